package renderer

import (
	"context"
	"fmt"

	"github.com/ankek/terraform-provider-diagrams/internal/cache"
	"github.com/ankek/terraform-provider-diagrams/internal/config"
	"github.com/ankek/terraform-provider-diagrams/internal/parser"
	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

// Backend turns snippets into scenes and scenes into artifact files.
// Exactly one backend is active per compiler.
type Backend interface {
	// Identity names the backend and its version. It is part of the
	// cache key.
	Identity() string

	// Imports lists the names injected into every snippet, also part of the
	// cache key.
	Imports() []string

	// Extension returns the artifact file extension for an output format.
	Extension(format string) string

	// Build parses and evaluates a snippet. It reports a cache hit without
	// evaluating when an artifact already exists at req.Path.
	Build(ctx context.Context, req Request) Outcome

	// RenderToFile writes the scene to path, replacing any existing file.
	RenderToFile(ctx context.Context, path string, sc *scene.Scene) error
}

// OutputKind is the encoding of an artifact.
type OutputKind int

const (
	OutputPNG OutputKind = iota
	OutputPDF
)

func (k OutputKind) String() string {
	if k == OutputPDF {
		return "pdf"
	}
	return "png"
}

// Request is one build.
type Request struct {
	Source     string
	Expression string
	Dimensions parser.Dimensions
	Kind       OutputKind
	Path       string // where the artifact lives if it was built before
}

// Status is the result category of a build.
type Status int

const (
	StatusParseError Status = iota
	StatusEvalError
	StatusCacheHit
	StatusBuilt
)

func (s Status) String() string {
	switch s {
	case StatusParseError:
		return "parse error"
	case StatusEvalError:
		return "evaluation error"
	case StatusCacheHit:
		return "cache hit"
	case StatusBuilt:
		return "built"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is the result of Backend.Build. Message holds the rendered
// diagnostics for the error statuses and Scene the normalised drawing for
// StatusBuilt.
type Outcome struct {
	Status  Status
	Message string
	Scene   *scene.Scene
	Err     error
}

// RenderError reports that an artifact could not be written.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewBackend returns the backend for kind, storing artifacts in store.
func NewBackend(kind config.BackendKind, store *cache.Store) (Backend, error) {
	switch kind {
	case config.BackendRaster:
		return NewRasterBackend(store), nil
	case config.BackendVector:
		return NewVectorBackend(store), nil
	}
	return nil, fmt.Errorf("unknown backend %q", kind)
}
