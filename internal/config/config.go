// Package config holds the process-wide options shared by every compile of a
// run. Options are built once, validated, and then passed by value into the
// compiler and backend constructors.
package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// BackendKind identifies one of the compiled-in rendering backends.
type BackendKind string

const (
	BackendRaster BackendKind = "raster"
	BackendVector BackendKind = "vector"
)

// Defaults applied by New when a field is left empty.
const (
	DefaultExpression = "example"
	DefaultOutputDir  = "images"
	DefaultFormat     = "html"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Options contains configuration for a whole run.
type Options struct {
	OutputFormat string      // target document format, e.g. "html", "latex", "beamer"
	OutputDir    string      // directory receiving rendered artifacts
	Expression   string      // binding evaluated inside each snippet
	Backend      BackendKind // active backend for this run
	Workers      int         // concurrent compiles, 1 means strictly sequential

	LogLevel  string
	LogFormat string
}

// New fills in defaults and validates the options. All problems are reported
// together.
func New(opts Options) (Options, error) {
	if opts.Expression == "" {
		opts.Expression = DefaultExpression
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = DefaultFormat
	}
	if opts.Backend == "" {
		opts.Backend = BackendRaster
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	if opts.LogLevel == "" {
		opts.LogLevel = DefaultLogLevel
	}
	if opts.LogFormat == "" {
		opts.LogFormat = DefaultLogFormat
	}
	opts.Backend = BackendKind(strings.ToLower(string(opts.Backend)))
	opts.LogLevel = strings.ToLower(opts.LogLevel)
	opts.LogFormat = strings.ToLower(opts.LogFormat)

	var result *multierror.Error

	switch opts.Backend {
	case BackendRaster, BackendVector:
	default:
		result = multierror.Append(result, fmt.Errorf("unknown backend %q: must be 'raster' or 'vector'", opts.Backend))
	}

	if opts.Workers < 1 {
		result = multierror.Append(result, fmt.Errorf("workers must be at least 1, got %d", opts.Workers))
	}

	if strings.TrimSpace(opts.Expression) != opts.Expression || strings.ContainsAny(opts.Expression, " \t\n.") {
		result = multierror.Append(result, fmt.Errorf("invalid expression name %q", opts.Expression))
	}

	switch opts.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("invalid log-level %q: must be 'trace', 'debug', 'info', 'warn', or 'error'", opts.LogLevel))
	}

	if opts.LogFormat != "text" && opts.LogFormat != "json" {
		result = multierror.Append(result, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", opts.LogFormat))
	}

	return opts, result.ErrorOrNil()
}
