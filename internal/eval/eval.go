// Package eval evaluates parsed snippets against the diagram prelude and
// produces the scene tree of the requested binding.
package eval

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"

	"github.com/ankek/terraform-provider-diagrams/internal/graph"
	"github.com/ankek/terraform-provider-diagrams/internal/parser"
	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

// Error reports that a snippet parsed but could not be evaluated to a
// diagram.
type Error struct {
	Diagnostics hcl.Diagnostics
	Files       map[string]*hcl.File
}

func (e *Error) Error() string {
	return fmt.Sprintf("evaluation error: %s", e.Diagnostics.Error())
}

// Detail renders the diagnostics with source context.
func (e *Error) Detail() string {
	return parser.FormatDiagnostics(e.Files, e.Diagnostics)
}

func newError(prog *parser.Program, diags ...*hcl.Diagnostic) *Error {
	return &Error{Diagnostics: diags, Files: prog.Files}
}

// Evaluate computes the binding named entry and returns it as a diagram.
// Only entry and the bindings it depends on are evaluated.
func Evaluate(ctx context.Context, prog *parser.Program, entry string) (*scene.Node, error) {
	logger := hclog.FromContext(ctx)

	order, err := graph.Build(prog).Order(entry)
	if err != nil {
		return nil, graphError(prog, entry, err)
	}
	logger.Trace("evaluating snippet", "entry", entry, "order", order)

	vars := Variables()
	evalCtx := &hcl.EvalContext{
		Variables: vars,
		Functions: Functions(),
	}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attr := prog.Bindings[name]
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, &Error{Diagnostics: diags, Files: prog.Files}
		}
		vars[name] = val
	}

	result := vars[entry]
	node, err := AsShape(result)
	if err != nil {
		attr := prog.Bindings[entry]
		return nil, newError(prog, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Not a diagram",
			Detail:   fmt.Sprintf("The value of %q must be a shape or a list of shapes: %s.", entry, err),
			Subject:  attr.Expr.Range().Ptr(),
		})
	}
	return node, nil
}

// graphError turns a dependency problem into diagnostics pointing at the
// offending binding.
func graphError(prog *parser.Program, entry string, err error) error {
	var unknown *graph.UnknownBindingError
	if errors.As(err, &unknown) {
		return newError(prog, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing diagram binding",
			Detail: fmt.Sprintf("The snippet must define %q, the binding that holds the diagram. Defined bindings: %v.",
				entry, prog.Names()),
		})
	}

	var cycle *graph.CycleError
	if errors.As(err, &cycle) {
		d := &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Circular reference",
			Detail:   cycle.Error(),
		}
		if attr, ok := prog.Bindings[cycle.Path[0]]; ok {
			d.Subject = attr.NameRange.Ptr()
		}
		return newError(prog, d)
	}

	return err
}
