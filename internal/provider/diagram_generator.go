// Package provider implements the Terraform provider for diagram rendering.
// It exposes a data source and a resource that compile a single diagram
// snippet into a content-addressed artifact file.
package provider

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/spf13/afero"

	"github.com/ankek/terraform-provider-diagrams/internal/cache"
	"github.com/ankek/terraform-provider-diagrams/internal/compiler"
	"github.com/ankek/terraform-provider-diagrams/internal/config"
	"github.com/ankek/terraform-provider-diagrams/internal/interfaces"
	"github.com/ankek/terraform-provider-diagrams/internal/parser"
	"github.com/ankek/terraform-provider-diagrams/internal/renderer"
	"github.com/ankek/terraform-provider-diagrams/internal/validation"
)

// DiagramGenerator handles the core logic of generating diagrams.
// It is shared between the resource and data source implementations.
type DiagramGenerator struct {
	Fs        afero.Fs
	Validator interfaces.PathValidator
}

// NewDiagramGenerator returns a generator working on the real filesystem.
func NewDiagramGenerator() *DiagramGenerator {
	fs := afero.NewOsFs()
	return &DiagramGenerator{Fs: fs, Validator: validation.Validator{Fs: fs}}
}

func (g *DiagramGenerator) fs() afero.Fs {
	if g.Fs == nil {
		return afero.NewOsFs()
	}
	return g.Fs
}

// Generate compiles one snippet.
//
// It performs the following steps:
//  1. Validates the options and the output directory
//  2. Selects the backend and opens the artifact store
//  3. Compiles the snippet, reusing an existing artifact when possible
//
// A snippet that fails to parse or evaluate is not an error: the result then
// has no OutputPath and carries the diagnostic instead.
func (g *DiagramGenerator) Generate(ctx context.Context, cfg interfaces.DiagramConfig) (*interfaces.GenerateResult, error) {
	opts, err := config.New(config.Options{
		OutputDir:    cfg.OutputDir,
		OutputFormat: cfg.Format,
		Backend:      config.BackendKind(cfg.Backend),
		Expression:   cfg.Expression,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	validator := g.Validator
	if validator == nil {
		validator = validation.Validator{Fs: g.fs()}
	}
	if err := validator.ValidateOutputDir(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}

	store := cache.NewStore(g.fs(), opts.OutputDir)
	backend, err := renderer.NewBackend(opts.Backend, store)
	if err != nil {
		return nil, err
	}

	// Compiler logging goes through tflog here.
	ctx = hclog.WithContext(ctx, hclog.NewNullLogger())

	var diag bytes.Buffer
	c := compiler.New(opts, backend, store, &diag)

	attrs := attributesFromMap(cfg.Attributes)
	res, err := c.Compile(ctx, parser.Snippet{
		Options:    opts,
		Attributes: attrs,
		Source:     cfg.Source,
	})
	if err != nil {
		return nil, err
	}

	result := &interfaces.GenerateResult{
		OutputPath: res.Path,
		CacheHit:   res.Status == renderer.StatusCacheHit,
		Echo:       parser.ParseEcho(attrs).String(),
	}
	if !res.Key.IsZero() {
		result.Key = res.Key.Hex()
	}
	if !res.OK() {
		result.Diagnostic = strings.TrimSpace(diag.String())
	}

	tflog.Debug(ctx, "compiled diagram", map[string]interface{}{
		"status":  res.Status.String(),
		"path":    res.Path,
		"backend": string(opts.Backend),
	})

	return result, nil
}

// Exists reports whether a previously generated artifact is still on disk.
func (g *DiagramGenerator) Exists(path string) bool {
	if path == "" {
		return false
	}
	ok, err := afero.Exists(g.fs(), path)
	return err == nil && ok
}

// attributesFromMap orders the attributes by key so that equal maps give
// equal snippets.
func attributesFromMap(m map[string]string) parser.Attributes {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make(parser.Attributes, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, parser.Attribute{Key: k, Value: m[k]})
	}
	return attrs
}
