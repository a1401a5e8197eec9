package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ankek/terraform-provider-diagrams/internal/interfaces"
	"github.com/ankek/terraform-provider-diagrams/internal/parser"
)

const circleSnippet = `example = fill(circle(1), "red")`

func TestDiagramGenerator_Generate(t *testing.T) {
	// Create temporary directory for test outputs
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "images")

	generator := NewDiagramGenerator()
	ctx := context.Background()

	tests := []struct {
		name    string
		config  interfaces.DiagramConfig
		wantExt string
		wantErr bool
	}{
		{
			name: "raster backend",
			config: interfaces.DiagramConfig{
				Source:    circleSnippet,
				OutputDir: outDir,
				Backend:   "raster",
			},
			wantExt: ".png",
		},
		{
			name: "raster backend ignores print formats",
			config: interfaces.DiagramConfig{
				Source:     circleSnippet,
				Attributes: map[string]string{"width": "120"},
				OutputDir:  outDir,
				Format:     "latex",
				Backend:    "raster",
			},
			wantExt: ".png",
		},
		{
			name: "vector backend for latex",
			config: interfaces.DiagramConfig{
				Source:    circleSnippet,
				OutputDir: outDir,
				Format:    "latex",
				Backend:   "vector",
			},
			wantExt: ".pdf",
		},
		{
			name: "vector backend for html",
			config: interfaces.DiagramConfig{
				Source:    circleSnippet,
				OutputDir: outDir,
				Format:    "html",
				Backend:   "vector",
			},
			wantExt: ".png",
		},
		{
			name: "unknown backend",
			config: interfaces.DiagramConfig{
				Source:    circleSnippet,
				OutputDir: outDir,
				Backend:   "svg",
			},
			wantErr: true,
		},
		{
			name: "path traversal in output dir",
			config: interfaces.DiagramConfig{
				Source:    circleSnippet,
				OutputDir: "../images",
			},
			wantErr: true,
		},
		{
			name: "malformed width",
			config: interfaces.DiagramConfig{
				Source:     circleSnippet,
				Attributes: map[string]string{"width": "wide"},
				OutputDir:  outDir,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := generator.Generate(ctx, tt.config)

			if (err != nil) != tt.wantErr {
				t.Errorf("Generate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if result == nil {
					t.Error("Generate() returned nil result for successful generation")
					return
				}

				if filepath.Ext(result.OutputPath) != tt.wantExt {
					t.Errorf("Generate() OutputPath = %v, want extension %v", result.OutputPath, tt.wantExt)
				}

				if filepath.Base(result.OutputPath) != result.Key+tt.wantExt {
					t.Errorf("Generate() OutputPath = %v, want it named after key %v", result.OutputPath, result.Key)
				}

				// Verify output file was created
				if _, err := os.Stat(result.OutputPath); os.IsNotExist(err) {
					t.Errorf("Generate() did not create output file at %s", result.OutputPath)
				}
			}
		})
	}
}

func TestDiagramGenerator_Generate_CacheHit(t *testing.T) {
	generator := &DiagramGenerator{Fs: afero.NewMemMapFs()}
	ctx := context.Background()
	cfg := interfaces.DiagramConfig{Source: circleSnippet, OutputDir: "/images"}

	first, err := generator.Generate(ctx, cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if first.CacheHit {
		t.Error("first Generate() should build the artifact")
	}

	second, err := generator.Generate(ctx, cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !second.CacheHit {
		t.Error("second Generate() should reuse the artifact")
	}
	if second.OutputPath != first.OutputPath {
		t.Errorf("OutputPath changed from %s to %s", first.OutputPath, second.OutputPath)
	}
	if !generator.Exists(second.OutputPath) {
		t.Errorf("Exists(%s) = false", second.OutputPath)
	}
}

func TestDiagramGenerator_Generate_SnippetErrors(t *testing.T) {
	generator := &DiagramGenerator{Fs: afero.NewMemMapFs()}
	ctx := context.Background()

	tests := []struct {
		name   string
		source string
	}{
		{name: "syntax error", source: "example = circle(1"},
		{name: "unknown variable", source: "example = nope"},
		{name: "missing binding", source: "other = circle(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := generator.Generate(ctx, interfaces.DiagramConfig{Source: tt.source, OutputDir: "/images"})
			if err != nil {
				t.Fatalf("Generate() error = %v, snippet errors must not be fatal", err)
			}
			if result.OutputPath != "" {
				t.Errorf("Generate() OutputPath = %q, want empty", result.OutputPath)
			}
			if !strings.Contains(result.Diagnostic, "Error while compiling diagram") {
				t.Errorf("Generate() Diagnostic = %q", result.Diagnostic)
			}
			if !strings.Contains(result.Diagnostic, tt.source) {
				t.Errorf("Diagnostic should quote the source, got %q", result.Diagnostic)
			}
		})
	}
}

func TestDiagramGenerator_Generate_ConfigurationError(t *testing.T) {
	generator := &DiagramGenerator{Fs: afero.NewMemMapFs()}

	_, err := generator.Generate(context.Background(), interfaces.DiagramConfig{
		Source:     circleSnippet,
		Attributes: map[string]string{"height": "-3"},
		OutputDir:  "/images",
	})

	var cfgErr *parser.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Generate() error = %v, want *parser.ConfigurationError", err)
	}
	if cfgErr.Key != "height" {
		t.Errorf("ConfigurationError.Key = %q, want height", cfgErr.Key)
	}
}

func TestDiagramGenerator_Generate_OutputDirIsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/images", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	generator := &DiagramGenerator{Fs: fs}

	if _, err := generator.Generate(context.Background(), interfaces.DiagramConfig{Source: circleSnippet, OutputDir: "/images"}); err == nil {
		t.Error("Generate() should fail when the output directory is a file")
	}
}

func TestDiagramGenerator_Generate_Echo(t *testing.T) {
	generator := &DiagramGenerator{Fs: afero.NewMemMapFs()}

	tests := []struct {
		attrs map[string]string
		want  string
	}{
		{attrs: nil, want: "below"},
		{attrs: map[string]string{"echo": "Above"}, want: "above"},
		{attrs: map[string]string{"echo": "sideways"}, want: "below"},
	}

	for _, tt := range tests {
		result, err := generator.Generate(context.Background(), interfaces.DiagramConfig{
			Source:     circleSnippet,
			Attributes: tt.attrs,
			OutputDir:  "/images",
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if result.Echo != tt.want {
			t.Errorf("Echo for %v = %q, want %q", tt.attrs, result.Echo, tt.want)
		}
	}
}

func TestDiagramGenerator_Generate_ContextCancellation(t *testing.T) {
	generator := &DiagramGenerator{Fs: afero.NewMemMapFs()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := generator.Generate(ctx, interfaces.DiagramConfig{Source: circleSnippet, OutputDir: "/images"})

	// Should get context canceled error
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestAttributesFromMap(t *testing.T) {
	got := attributesFromMap(map[string]string{"width": "3", "echo": "above", "height": "4"})
	want := parser.Attributes{{Key: "echo", Value: "above"}, {Key: "height", Value: "4"}, {Key: "width", Value: "3"}}

	if len(got) != len(want) {
		t.Fatalf("attributesFromMap() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attributesFromMap()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
