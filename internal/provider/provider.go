package provider

import (
	"context"
	"regexp"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/ankek/terraform-provider-diagrams/internal/config"
	"github.com/ankek/terraform-provider-diagrams/internal/interfaces"
)

// Ensure DiagramsProvider satisfies various provider interfaces.
var _ provider.Provider = &DiagramsProvider{}

var expressionPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// DiagramsProvider defines the provider implementation.
type DiagramsProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version string
}

// DiagramsProviderModel describes the provider data model.
type DiagramsProviderModel struct {
	OutputDir  types.String `tfsdk:"output_dir"`
	Format     types.String `tfsdk:"format"`
	Backend    types.String `tfsdk:"backend"`
	Expression types.String `tfsdk:"expression"`
}

// ProviderData is handed to every resource and data source.
type ProviderData struct {
	Options   config.Options
	Generator *DiagramGenerator
}

func (p *DiagramsProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "diagrams"
	resp.Version = p.version
}

func (p *DiagramsProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		Description: "The Diagrams provider compiles small diagram programs into PNG or PDF artifacts, named by the hash of their inputs so unchanged diagrams are never rendered twice.",
		Attributes: map[string]schema.Attribute{
			"output_dir": schema.StringAttribute{
				Description: "Directory receiving the rendered artifacts. Created on first use. Default is 'images'.",
				Optional:    true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"format": schema.StringAttribute{
				Description: "Target document format, e.g. 'html', 'latex' or 'beamer'. The vector backend writes PDF for 'latex' and 'beamer'. Default is 'html'.",
				Optional:    true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"backend": schema.StringAttribute{
				Description: "Rendering backend: 'raster' or 'vector'. Default is 'raster'.",
				Optional:    true,
				Validators: []validator.String{
					stringvalidator.OneOf(string(config.BackendRaster), string(config.BackendVector)),
				},
			},
			"expression": schema.StringAttribute{
				Description: "Name of the binding that holds the diagram inside each snippet. Default is 'example'.",
				Optional:    true,
				Validators: []validator.String{
					stringvalidator.RegexMatches(expressionPattern, "must be a valid identifier"),
				},
			},
		},
	}
}

func (p *DiagramsProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data DiagramsProviderModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	opts, err := config.New(config.Options{
		OutputDir:    data.OutputDir.ValueString(),
		OutputFormat: data.Format.ValueString(),
		Backend:      config.BackendKind(data.Backend.ValueString()),
		Expression:   data.Expression.ValueString(),
	})
	if err != nil {
		resp.Diagnostics.AddError("Invalid provider configuration", err.Error())
		return
	}

	tflog.Info(ctx, "configured diagrams provider", map[string]interface{}{
		"output_dir": opts.OutputDir,
		"format":     opts.OutputFormat,
		"backend":    string(opts.Backend),
	})

	pd := &ProviderData{Options: opts, Generator: NewDiagramGenerator()}
	resp.DataSourceData = pd
	resp.ResourceData = pd
}

func (p *DiagramsProvider) Resources(ctx context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewArtifactResource,
	}
}

func (p *DiagramsProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		NewSnippetDataSource,
	}
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &DiagramsProvider{
			version: version,
		}
	}
}

// defaultProviderData is used when the provider block was never configured,
// e.g. in unit tests.
func defaultProviderData() *ProviderData {
	opts, _ := config.New(config.Options{})
	return &ProviderData{Options: opts, Generator: NewDiagramGenerator()}
}

// diagramConfig combines the provider options with the per-snippet inputs.
func (pd *ProviderData) diagramConfig(source string, attrs map[string]string, format string) interfaces.DiagramConfig {
	if format == "" {
		format = pd.Options.OutputFormat
	}
	return interfaces.DiagramConfig{
		Source:     source,
		Attributes: attrs,
		OutputDir:  pd.Options.OutputDir,
		Format:     format,
		Backend:    string(pd.Options.Backend),
		Expression: pd.Options.Expression,
	}
}
