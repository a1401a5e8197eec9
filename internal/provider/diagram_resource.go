package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/mapplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &ArtifactResource{}
var _ resource.ResourceWithConfigure = &ArtifactResource{}
var _ resource.ResourceWithImportState = &ArtifactResource{}

func NewArtifactResource() resource.Resource {
	return &ArtifactResource{}
}

// ArtifactResource defines the resource implementation.
type ArtifactResource struct {
	data *ProviderData
}

// ArtifactResourceModel describes the resource data model.
type ArtifactResourceModel struct {
	ID         types.String `tfsdk:"id"`
	Source     types.String `tfsdk:"source"`
	Attributes types.Map    `tfsdk:"attributes"`
	Format     types.String `tfsdk:"format"`
	Path       types.String `tfsdk:"path"`
	Echo       types.String `tfsdk:"echo"`
	CacheHit   types.Bool   `tfsdk:"cache_hit"`
}

func (r *ArtifactResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_artifact"
}

func (r *ArtifactResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Renders a diagram snippet to an artifact file. The artifact is rendered again when the file disappears.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Content address of the diagram.",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"source": schema.StringAttribute{
				MarkdownDescription: "Diagram program. The binding named by the provider's `expression` is drawn.",
				Required:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"attributes": schema.MapAttribute{
				MarkdownDescription: "Block attributes: `width`, `height` and `echo`. Other keys are ignored.",
				ElementType:         types.StringType,
				Optional:            true,
				PlanModifiers: []planmodifier.Map{
					mapplanmodifier.RequiresReplace(),
				},
			},
			"format": schema.StringAttribute{
				MarkdownDescription: "Overrides the provider's target document format for this artifact.",
				Optional:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"path": schema.StringAttribute{
				MarkdownDescription: "Path of the rendered artifact.",
				Computed:            true,
			},
			"echo": schema.StringAttribute{
				MarkdownDescription: "Where the source should be shown relative to the image: 'above' or 'below'.",
				Computed:            true,
			},
			"cache_hit": schema.BoolAttribute{
				MarkdownDescription: "Whether an existing artifact was reused on the last apply.",
				Computed:            true,
			},
		},
	}
}

func (r *ArtifactResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	pd, ok := req.ProviderData.(*ProviderData)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Resource Configure Type",
			fmt.Sprintf("Expected *ProviderData, got: %T.", req.ProviderData),
		)
		return
	}
	r.data = pd
}

func (r *ArtifactResource) providerData() *ProviderData {
	if r.data == nil {
		return defaultProviderData()
	}
	return r.data
}

// render compiles the snippet of data and fills in the computed attributes.
// Unlike the data source, a snippet that does not compile is an error here,
// because the resource has no artifact to manage.
func (r *ArtifactResource) render(ctx context.Context, data *ArtifactResourceModel) diag.Diagnostics {
	var diags diag.Diagnostics

	attrs := map[string]string{}
	if !data.Attributes.IsNull() && !data.Attributes.IsUnknown() {
		diags.Append(data.Attributes.ElementsAs(ctx, &attrs, false)...)
		if diags.HasError() {
			return diags
		}
	}

	pd := r.providerData()
	result, err := pd.Generator.Generate(ctx, pd.diagramConfig(data.Source.ValueString(), attrs, data.Format.ValueString()))
	if err != nil {
		diags.AddError("Failed to generate diagram", err.Error())
		return diags
	}
	if result.Diagnostic != "" {
		diags.AddError("Diagram snippet failed to compile", result.Diagnostic)
		return diags
	}

	tflog.Debug(ctx, "rendered artifact", map[string]interface{}{
		"path":      result.OutputPath,
		"cache_hit": result.CacheHit,
	})

	data.ID = types.StringValue(result.Key)
	data.Path = types.StringValue(result.OutputPath)
	data.Echo = types.StringValue(result.Echo)
	data.CacheHit = types.BoolValue(result.CacheHit)
	return diags
}

func (r *ArtifactResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data ArtifactResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(r.render(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *ArtifactResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data ArtifactResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	// Check if the artifact still exists
	if !r.providerData().Generator.Exists(data.Path.ValueString()) {
		tflog.Info(ctx, "artifact missing, removing from state", map[string]interface{}{"path": data.Path.ValueString()})
		resp.State.RemoveResource(ctx)
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *ArtifactResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data ArtifactResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(r.render(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *ArtifactResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data ArtifactResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	// Artifacts are content addressed and may be shared with other
	// resources, so the file is left in place.
}

func (r *ArtifactResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	resource.ImportStatePassthroughID(ctx, path.Root("id"), req, resp)
}
