package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/ankek/terraform-provider-diagrams/internal/cache"
	"github.com/ankek/terraform-provider-diagrams/internal/compiler"
	"github.com/ankek/terraform-provider-diagrams/internal/config"
	"github.com/ankek/terraform-provider-diagrams/internal/document"
	"github.com/ankek/terraform-provider-diagrams/internal/logging"
	"github.com/ankek/terraform-provider-diagrams/internal/renderer"
	"github.com/ankek/terraform-provider-diagrams/internal/validation"
)

// RenderCommand reads a markdown document, renders its diagram blocks and
// writes the rewritten document. Progress markers, diagnostics and logs go
// to Stderr.
type RenderCommand struct {
	Ui     cli.Ui
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Fs     afero.Fs
}

func (c *RenderCommand) Run(args []string) int {
	var (
		opts    config.Options
		backend string
		outPath string
	)

	cmdFlags := flag.NewFlagSet("render", flag.ContinueOnError)
	cmdFlags.SetOutput(io.Discard)
	cmdFlags.StringVar(&opts.OutputFormat, "format", config.DefaultFormat, "target document format")
	cmdFlags.StringVar(&opts.OutputDir, "out-dir", config.DefaultOutputDir, "artifact directory")
	cmdFlags.StringVar(&opts.Expression, "expression", config.DefaultExpression, "diagram binding name")
	cmdFlags.StringVar(&backend, "backend", string(config.BackendRaster), "rendering backend")
	cmdFlags.IntVar(&opts.Workers, "workers", 1, "concurrent compiles")
	cmdFlags.StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel, "log level")
	cmdFlags.StringVar(&opts.LogFormat, "log-format", config.DefaultLogFormat, "log format")
	cmdFlags.StringVar(&outPath, "o", "", "output document")
	if err := cmdFlags.Parse(args); err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing command-line flags: %s\n", err))
		c.Ui.Error(c.Help())
		return 1
	}
	opts.Backend = config.BackendKind(backend)

	rest := cmdFlags.Args()
	if len(rest) > 1 {
		c.Ui.Error("The render command expects at most one input document.\n")
		c.Ui.Error(c.Help())
		return 1
	}

	opts, err := config.New(opts)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Invalid options: %s", err))
		return 1
	}

	logger := logging.New(opts.LogLevel, opts.LogFormat, c.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = hclog.WithContext(ctx, logger)

	if err := c.run(ctx, opts, rest, outPath); err != nil {
		logger.Debug("render failed", "error", err)
		c.Ui.Error(fmt.Sprintf("Error: %s", err))
		return 1
	}
	return 0
}

func (c *RenderCommand) run(ctx context.Context, opts config.Options, inputs []string, outPath string) error {
	validator := validation.Validator{Fs: c.Fs}

	if err := validator.ValidateOutputDir(opts.OutputDir); err != nil {
		return err
	}

	var in io.Reader = c.Stdin
	if len(inputs) == 1 {
		if err := validator.ValidateInputPath(inputs[0], false); err != nil {
			return err
		}
		f, err := c.Fs.Open(inputs[0])
		if err != nil {
			return fmt.Errorf("failed to open input document: %w", err)
		}
		defer f.Close()
		in = f
	}

	blocks, err := document.ReadMarkdown(in)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	store := cache.NewStore(c.Fs, opts.OutputDir)
	backend, err := renderer.NewBackend(opts.Backend, store)
	if err != nil {
		return err
	}

	rw := &document.Rewriter{
		Compiler: compiler.New(opts, backend, store, c.Stderr),
		Options:  opts,
	}
	blocks, err = rw.Rewrite(ctx, blocks)
	if err != nil {
		return err
	}

	if outPath == "" {
		return document.WriteMarkdown(c.Stdout, blocks)
	}

	if err := validator.ValidateOutputPath(outPath); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := document.WriteMarkdown(&buf, blocks); err != nil {
		return err
	}
	if err := afero.WriteFile(c.Fs, outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output document: %w", err)
	}
	return nil
}

func (c *RenderCommand) Help() string {
	helpText := `
Usage: diagrams-filter render [options] [DOCUMENT]

  Renders every code block of class "diagram" or "diagram-source" in a
  markdown document and replaces it with an image reference. Artifacts are
  named after the hash of their inputs, so unchanged diagrams are reused
  from the output directory. Reads standard input when no DOCUMENT is given.

  Progress is written to standard error: "." for a reused artifact, "O" for
  a freshly rendered one.

Options:

  -format=html          Target document format. With the vector backend,
                        "latex" and "beamer" produce PDF.

  -out-dir=images       Directory receiving the rendered artifacts.

  -expression=example   Name of the binding drawn from each snippet.

  -backend=raster       Rendering backend: "raster" or "vector".

  -workers=1            Number of diagrams compiled concurrently.

  -log-level=info       One of trace, debug, info, warn or error.

  -log-format=text      "text" or "json".

  -o=path               Write the document to path instead of standard
                        output.
`
	return strings.TrimSpace(helpText)
}

func (c *RenderCommand) Synopsis() string {
	return "Render the diagrams of a markdown document"
}
