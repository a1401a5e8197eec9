// Package interfaces defines interfaces for dependency injection and testing
package interfaces

import (
	"context"

	"github.com/ankek/terraform-provider-diagrams/internal/compiler"
	"github.com/ankek/terraform-provider-diagrams/internal/parser"
)

// Compiler defines the interface for turning snippets into artifacts
type Compiler interface {
	// Compile builds or reuses the artifact of a single snippet
	Compile(ctx context.Context, sn parser.Snippet) (compiler.Result, error)

	// CompileAll compiles several snippets, returning one result per snippet
	CompileAll(ctx context.Context, snippets []parser.Snippet) ([]compiler.Result, error)
}

// PathValidator defines the interface for validating file paths
type PathValidator interface {
	// ValidateOutputDir validates the artifact directory
	ValidateOutputDir(dir string) error

	// ValidateOutputPath validates the path of a file about to be written
	ValidateOutputPath(path string) error

	// ValidateInputPath validates an input path (document or directory)
	ValidateInputPath(path string, mustBeDir bool) error
}

// DiagramGenerator defines the interface for generating a single diagram
type DiagramGenerator interface {
	// Generate renders the snippet described by cfg
	Generate(ctx context.Context, cfg DiagramConfig) (*GenerateResult, error)
}

// DiagramConfig contains all configuration needed to generate a diagram
type DiagramConfig struct {
	Source     string
	Attributes map[string]string
	OutputDir  string
	Format     string
	Backend    string
	Expression string
}

// GenerateResult contains the results of diagram generation. OutputPath is
// empty when the snippet failed; Diagnostic then says why.
type GenerateResult struct {
	OutputPath string
	Key        string
	CacheHit   bool
	Echo       string
	Diagnostic string
}
