package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &SnippetDataSource{}
var _ datasource.DataSourceWithConfigure = &SnippetDataSource{}

// SnippetDataSource defines the data source implementation.
type SnippetDataSource struct {
	data *ProviderData
}

func NewSnippetDataSource() datasource.DataSource {
	return &SnippetDataSource{}
}

// SnippetDataSourceModel describes the data source data model.
type SnippetDataSourceModel struct {
	ID         types.String `tfsdk:"id"`
	Source     types.String `tfsdk:"source"`
	Attributes types.Map    `tfsdk:"attributes"`
	Format     types.String `tfsdk:"format"`
	Path       types.String `tfsdk:"path"`
	Echo       types.String `tfsdk:"echo"`
	CacheHit   types.Bool   `tfsdk:"cache_hit"`
	Diagnostic types.String `tfsdk:"diagnostic"`
}

func (d *SnippetDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_snippet"
}

func (d *SnippetDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Compiles a diagram snippet and returns the path of the rendered artifact. Artifacts are reused when the snippet, its attributes and the provider options are unchanged.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Content address of the diagram.",
			},
			"source": schema.StringAttribute{
				MarkdownDescription: "Diagram program. The binding named by the provider's `expression` is drawn.",
				Required:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"attributes": schema.MapAttribute{
				MarkdownDescription: "Block attributes: `width`, `height` and `echo`. Other keys are ignored.",
				ElementType:         types.StringType,
				Optional:            true,
			},
			"format": schema.StringAttribute{
				MarkdownDescription: "Overrides the provider's target document format for this snippet.",
				Optional:            true,
			},
			"path": schema.StringAttribute{
				MarkdownDescription: "Path of the rendered artifact. Empty when the snippet failed to compile.",
				Computed:            true,
			},
			"echo": schema.StringAttribute{
				MarkdownDescription: "Where the source should be shown relative to the image: 'above' or 'below'.",
				Computed:            true,
			},
			"cache_hit": schema.BoolAttribute{
				MarkdownDescription: "Whether an existing artifact was reused.",
				Computed:            true,
			},
			"diagnostic": schema.StringAttribute{
				MarkdownDescription: "Compiler output for a snippet that failed to parse or evaluate.",
				Computed:            true,
			},
		},
	}
}

func (d *SnippetDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	pd, ok := req.ProviderData.(*ProviderData)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Data Source Configure Type",
			fmt.Sprintf("Expected *ProviderData, got: %T.", req.ProviderData),
		)
		return
	}
	d.data = pd
}

func (d *SnippetDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data SnippetDataSourceModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	pd := d.data
	if pd == nil {
		pd = defaultProviderData()
	}

	attrs := map[string]string{}
	if !data.Attributes.IsNull() && !data.Attributes.IsUnknown() {
		resp.Diagnostics.Append(data.Attributes.ElementsAs(ctx, &attrs, false)...)
		if resp.Diagnostics.HasError() {
			return
		}
	}

	result, err := pd.Generator.Generate(ctx, pd.diagramConfig(data.Source.ValueString(), attrs, data.Format.ValueString()))
	if err != nil {
		resp.Diagnostics.AddError("Failed to generate diagram", err.Error())
		return
	}

	if result.Diagnostic != "" {
		tflog.Warn(ctx, "diagram snippet failed to compile", map[string]interface{}{"key": result.Key})
		resp.Diagnostics.AddWarning("Diagram snippet failed to compile", result.Diagnostic)
	}

	data.ID = types.StringValue(result.Key)
	data.Path = types.StringValue(result.OutputPath)
	data.Echo = types.StringValue(result.Echo)
	data.CacheHit = types.BoolValue(result.CacheHit)
	data.Diagnostic = types.StringValue(result.Diagnostic)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}
