// Package compiler turns diagram snippets into artifact files, reusing
// artifacts from earlier runs whenever the inputs are unchanged.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ankek/terraform-provider-diagrams/internal/cache"
	"github.com/ankek/terraform-provider-diagrams/internal/config"
	"github.com/ankek/terraform-provider-diagrams/internal/parser"
	"github.com/ankek/terraform-provider-diagrams/internal/renderer"
)

// Progress markers written to the diagnostic stream.
const (
	MarkCacheHit = "."
	MarkBuilt    = "O"
)

// Result is the outcome of compiling one snippet. Path is empty when the
// snippet failed to parse or evaluate; Diagnostic then explains why.
type Result struct {
	Path       string
	Key        cache.Key
	Status     renderer.Status
	Diagnostic string
}

// OK reports whether an artifact is available.
func (r Result) OK() bool {
	return r.Path != ""
}

// Compiler drives one backend and one artifact store.
type Compiler struct {
	opts    config.Options
	backend renderer.Backend
	store   *cache.Store

	mu   sync.Mutex // guards diag
	diag io.Writer

	flight singleflight.Group
}

// New creates a compiler. Progress markers and diagnostics are written to
// diag.
func New(opts config.Options, backend renderer.Backend, store *cache.Store, diag io.Writer) *Compiler {
	if diag == nil {
		diag = io.Discard
	}
	return &Compiler{
		opts:    opts,
		backend: backend,
		store:   store,
		diag:    diag,
	}
}

// Compile builds the artifact for one snippet, or finds it in the store.
//
// Snippets which fail to parse or evaluate are not errors: the diagnostic
// goes to the diagnostic stream and the Result has no path. The returned
// error is reserved for problems that affect the whole run, such as a
// malformed size attribute, an output directory that cannot be created or
// an artifact that cannot be written.
func (c *Compiler) Compile(ctx context.Context, sn parser.Snippet) (Result, error) {
	var buf bytes.Buffer
	res, err := c.compile(ctx, sn, &buf)
	c.flush(&buf)
	return res, err
}

// CompileAll compiles the snippets in order and returns one result per
// snippet. With more than one worker configured the snippets are compiled
// concurrently; diagnostics of a block are still written in one piece.
// Compilation stops at the first fatal error.
func (c *Compiler) CompileAll(ctx context.Context, snippets []parser.Snippet) ([]Result, error) {
	results := make([]Result, len(snippets))

	if c.opts.Workers <= 1 {
		for i, sn := range snippets {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			res, err := c.Compile(ctx, sn)
			if err != nil {
				return results, err
			}
			results[i] = res
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, sn := range snippets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := c.Compile(gctx, sn)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

func (c *Compiler) compile(ctx context.Context, sn parser.Snippet, diag io.Writer) (Result, error) {
	logger := hclog.FromContext(ctx)

	// The store is fixed at construction, so a snippet cannot redirect its
	// artifact elsewhere.
	if dir := sn.Options.OutputDir; dir != "" && filepath.Clean(dir) != c.store.Dir() {
		return Result{}, &parser.ConfigurationError{
			Err: fmt.Errorf("snippet output directory %s does not match %s", dir, c.store.Dir()),
		}
	}

	if err := c.store.EnsureDir(); err != nil {
		return Result{}, err
	}

	dims, err := parser.ParseDimensions(sn.Attributes)
	if err != nil {
		return Result{}, err
	}

	expression := sn.Options.Expression
	if expression == "" {
		expression = c.opts.Expression
	}
	format := sn.Options.OutputFormat
	if format == "" {
		format = c.opts.OutputFormat
	}

	ext := c.backend.Extension(format)
	key := cache.DeriveKey(sn.Source, expression, c.backend.Imports(), dims, c.backend.Identity())
	path := c.store.Path(key, ext)
	req := renderer.Request{
		Source:     sn.Source,
		Expression: expression,
		Dimensions: dims,
		Kind:       renderer.KindForExtension(ext),
		Path:       path,
	}

	// Blocks with identical inputs share one build. Callers that only
	// waited for another block's build see the artifact as cached.
	ran := false
	v, err, _ := c.flight.Do(path, func() (any, error) {
		ran = true
		return c.build(ctx, req)
	})
	if err != nil {
		return Result{}, err
	}
	out := v.(renderer.Outcome)
	if !ran && out.Status == renderer.StatusBuilt {
		out.Status = renderer.StatusCacheHit
	}

	logger.Debug("compiled diagram", "key", key.String(), "status", out.Status.String(), "path", path)

	switch out.Status {
	case renderer.StatusParseError, renderer.StatusEvalError:
		writeDiagnostic(diag, out, sn.Source)
		return Result{Key: key, Status: out.Status, Diagnostic: out.Message}, nil
	case renderer.StatusCacheHit:
		fmt.Fprint(diag, MarkCacheHit)
	case renderer.StatusBuilt:
		fmt.Fprint(diag, MarkBuilt)
	}
	return Result{Path: path, Key: key, Status: out.Status}, nil
}

// build runs the backend and writes a freshly built scene.
func (c *Compiler) build(ctx context.Context, req renderer.Request) (renderer.Outcome, error) {
	out := c.backend.Build(ctx, req)
	if out.Err != nil && (errors.Is(out.Err, context.Canceled) || errors.Is(out.Err, context.DeadlineExceeded)) {
		return out, out.Err
	}
	if out.Status == renderer.StatusBuilt {
		if err := c.backend.RenderToFile(ctx, req.Path, out.Scene); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (c *Compiler) flush(buf *bytes.Buffer) {
	if buf.Len() == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = buf.WriteTo(c.diag)
}

// writeDiagnostic prints the error of a failed block followed by the
// complete block source with line numbers.
func writeDiagnostic(w io.Writer, out renderer.Outcome, source string) {
	fmt.Fprintf(w, "\nError while compiling diagram (%s):\n", out.Status)
	fmt.Fprintln(w, strings.TrimRight(out.Message, "\n"))
	fmt.Fprintln(w, "Source:")
	lines := strings.Split(strings.TrimRight(source, "\n"), "\n")
	for i, line := range lines {
		fmt.Fprintf(w, "%4d | %s\n", i+1, line)
	}
}
