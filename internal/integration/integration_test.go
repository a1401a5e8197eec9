package integration

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ankek/terraform-provider-diagrams/internal/cache"
	"github.com/ankek/terraform-provider-diagrams/internal/compiler"
	"github.com/ankek/terraform-provider-diagrams/internal/config"
	"github.com/ankek/terraform-provider-diagrams/internal/document"
	"github.com/ankek/terraform-provider-diagrams/internal/parser"
	"github.com/ankek/terraform-provider-diagrams/internal/renderer"
)

func newCompiler(t *testing.T, opts config.Options, diag *bytes.Buffer) *compiler.Compiler {
	t.Helper()
	opts, err := config.New(opts)
	if err != nil {
		t.Fatalf("config.New() error = %v", err)
	}
	store := cache.NewOsStore(opts.OutputDir)
	backend, err := renderer.NewBackend(opts.Backend, store)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	return compiler.New(opts, backend, store, diag)
}

func snippet(source string, attrs ...parser.Attribute) parser.Snippet {
	return parser.Snippet{Attributes: attrs, Source: source}
}

// TestFullPipeline tests the complete workflow from snippet to artifact file
func TestFullPipeline(t *testing.T) {
	tests := []struct {
		name    string
		backend config.BackendKind
		format  string
		source  string
		attrs   parser.Attributes
		wantExt string
		wantW   int
		wantH   int
	}{
		{
			name:    "styled shapes",
			backend: config.BackendRaster,
			source: `
c     = fill(circle(1), "red")
s     = stroke(square(2), "#336699")
example = hcat([c, s, regular_polygon(6, 1)], 0.25)
`,
			attrs:   parser.Attributes{{Key: "width", Value: "300"}, {Key: "height", Value: "150"}},
			wantExt: ".png",
			wantW:   300,
			wantH:   150,
		},
		{
			name:    "text with defaults",
			backend: config.BackendRaster,
			source:  `example = vcat([text("hello", 1), line([[0, 0], [4, 0]])], 0.5)`,
			wantExt: ".png",
			wantW:   int(parser.DefaultWidth),
			wantH:   int(parser.DefaultHeight),
		},
		{
			name:    "vector backend html falls back to png",
			backend: config.BackendVector,
			format:  "html",
			source:  `example = rotate(rect(2, 1), 30)`,
			attrs:   parser.Attributes{{Key: "width", Value: "64.5"}, {Key: "height", Value: "32"}},
			wantExt: ".png",
			wantW:   65,
			wantH:   32,
		},
		{
			name:    "vector backend beamer",
			backend: config.BackendVector,
			format:  "beamer",
			source:  `example = group(circle(1), translate(circle(0.5), 1, 1))`,
			wantExt: ".pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "images")
			var diag bytes.Buffer
			c := newCompiler(t, config.Options{OutputDir: outDir, Backend: tt.backend, OutputFormat: tt.format}, &diag)

			res, err := c.Compile(context.Background(), snippet(tt.source, tt.attrs...))
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if !res.OK() {
				t.Fatalf("Compile() produced no artifact:\n%s", diag.String())
			}
			if filepath.Ext(res.Path) != tt.wantExt {
				t.Errorf("Compile() path = %s, want extension %s", res.Path, tt.wantExt)
			}
			if diag.String() != compiler.MarkBuilt {
				t.Errorf("diagnostic stream = %q, want %q", diag.String(), compiler.MarkBuilt)
			}

			content, err := os.ReadFile(res.Path)
			if err != nil {
				t.Fatalf("Failed to read artifact: %v", err)
			}

			if tt.wantExt == ".pdf" {
				if !bytes.HasPrefix(content, []byte("%PDF-")) {
					t.Errorf("artifact is not a PDF file")
				}
				return
			}

			cfg, err := png.DecodeConfig(bytes.NewReader(content))
			if err != nil {
				t.Fatalf("artifact is not a PNG file: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("PNG size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

// TestErrorIsolation compiles three blocks where the middle one fails.
func TestErrorIsolation(t *testing.T) {
	modes := []struct {
		name    string
		workers int
	}{
		{name: "sequential", workers: 1},
		{name: "parallel", workers: 3},
	}
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "images")
			var diag bytes.Buffer
			c := newCompiler(t, config.Options{OutputDir: outDir, Workers: mode.workers}, &diag)

			results, err := c.CompileAll(context.Background(), []parser.Snippet{
				snippet(`example = circle(1)`),
				snippet(`example = circle(undefined_radius)`),
				snippet(`example = square(1)`),
			})
			if err != nil {
				t.Fatalf("CompileAll() error = %v", err)
			}

			if !results[0].OK() || !results[2].OK() {
				t.Fatalf("healthy blocks should have artifacts: %+v", results)
			}
			if results[1].OK() {
				t.Errorf("failing block should have no artifact, got %s", results[1].Path)
			}
			if results[1].Status != renderer.StatusEvalError {
				t.Errorf("failing block status = %s, want evaluation error", results[1].Status)
			}

			for _, i := range []int{0, 2} {
				if _, err := os.Stat(results[i].Path); err != nil {
					t.Errorf("artifact %d missing: %v", i, err)
				}
			}

			out := diag.String()
			if !strings.Contains(out, "circle(undefined_radius)") {
				t.Errorf("diagnostic should quote the failing source, got:\n%s", out)
			}
			if strings.Count(out, compiler.MarkBuilt) < 2 {
				t.Errorf("expected two build markers, got:\n%s", out)
			}
		})
	}
}

// TestCacheAcrossRuns checks that a second process run with the same
// output directory reuses the artifact and that a deleted artifact is
// rebuilt.
func TestCacheAcrossRuns(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "images")
	sn := snippet(`example = polygon([[0, 0], [2, 0], [1, 1.5]])`)
	ctx := context.Background()

	var first bytes.Buffer
	res1, err := newCompiler(t, config.Options{OutputDir: outDir}, &first).Compile(ctx, sn)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	var second bytes.Buffer
	res2, err := newCompiler(t, config.Options{OutputDir: outDir}, &second).Compile(ctx, sn)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if res2.Path != res1.Path {
		t.Errorf("path changed between runs: %s != %s", res1.Path, res2.Path)
	}
	if first.String() != compiler.MarkBuilt || second.String() != compiler.MarkCacheHit {
		t.Errorf("markers = %q then %q, want %q then %q", first.String(), second.String(), compiler.MarkBuilt, compiler.MarkCacheHit)
	}

	if err := os.Remove(res1.Path); err != nil {
		t.Fatalf("Failed to remove artifact: %v", err)
	}

	var third bytes.Buffer
	res3, err := newCompiler(t, config.Options{OutputDir: outDir}, &third).Compile(ctx, sn)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if third.String() != compiler.MarkBuilt {
		t.Errorf("deleted artifact should be rebuilt, marker = %q", third.String())
	}
	if _, err := os.Stat(res3.Path); err != nil {
		t.Errorf("rebuilt artifact missing: %v", err)
	}
}

// TestDocumentEndToEnd runs a markdown document through the rewriter.
func TestDocumentEndToEnd(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "images")
	opts, err := config.New(config.Options{OutputDir: outDir, Workers: 4})
	if err != nil {
		t.Fatalf("config.New() error = %v", err)
	}

	input := "Intro\n\n" +
		"```{.diagram width=200}\nexample = circle(1)\n```\n\n" +
		"```{.diagram width=200}\nexample = circle(1)\n```\n\n" +
		"```{.diagram-source echo=above}\nexample = text(\"hi\", 1)\n```\n"

	blocks, err := document.ReadMarkdown(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadMarkdown() error = %v", err)
	}

	var diag bytes.Buffer
	rw := &document.Rewriter{Compiler: newCompiler(t, opts, &diag), Options: opts}
	blocks, err = rw.Rewrite(context.Background(), blocks)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	var out bytes.Buffer
	if err := document.WriteMarkdown(&out, blocks); err != nil {
		t.Fatalf("WriteMarkdown() error = %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 artifacts for 2 distinct diagrams, got %d", len(entries))
	}
	if got := strings.Count(diag.String(), compiler.MarkBuilt); got != 2 {
		t.Errorf("expected 2 fresh builds, got %d in %q", got, diag.String())
	}

	text := out.String()
	if got := strings.Count(text, "![]("+outDir); got != 3 {
		t.Errorf("expected 3 image references, got %d in:\n%s", got, text)
	}
	echo := strings.Index(text, "``` hcl\nexample = text(\"hi\", 1)\n```")
	img := strings.LastIndex(text, "![](")
	if echo < 0 || echo > img {
		t.Errorf("source should be echoed above its image:\n%s", text)
	}
}
