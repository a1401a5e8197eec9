// Package graph builds the dependency graph between the bindings of a parsed
// snippet and computes the order in which they must be evaluated.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/ankek/terraform-provider-diagrams/internal/parser"
)

// Node represents a binding in the snippet
type Node struct {
	Name string
	Attr *hcl.Attribute
	Deps []string // names of other bindings referenced by this one
}

// Graph represents the complete binding graph
type Graph struct {
	Nodes map[string]*Node
}

// CycleError reports bindings that refer to each other in a loop.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("bindings refer to each other in a cycle: %s", strings.Join(e.Path, " -> "))
}

// UnknownBindingError reports a request for a binding the snippet does not define.
type UnknownBindingError struct {
	Name string
}

func (e *UnknownBindingError) Error() string {
	return fmt.Sprintf("snippet does not define %q", e.Name)
}

// Build creates a graph from the bindings of a program. References to names
// that are not bindings (prelude variables, typos) are left for the
// evaluator to resolve or report.
func Build(prog *parser.Program) *Graph {
	g := &Graph{
		Nodes: make(map[string]*Node, len(prog.Bindings)),
	}

	for name, attr := range prog.Bindings {
		g.Nodes[name] = &Node{Name: name, Attr: attr}
	}

	for _, node := range g.Nodes {
		node.Deps = dependencies(node.Attr.Expr, g.Nodes)
	}

	return g
}

// dependencies finds binding references in an expression
func dependencies(expr hcl.Expression, nodes map[string]*Node) []string {
	seen := make(map[string]bool) // Use map to deduplicate

	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		if _, ok := nodes[root]; ok {
			seen[root] = true
		}
	}

	deps := make([]string, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// Order returns the bindings needed to evaluate entry, dependencies first,
// ending with entry itself.
func (g *Graph) Order(entry string) ([]string, error) {
	if _, ok := g.Nodes[entry]; !ok {
		return nil, &UnknownBindingError{Name: entry}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.Nodes))
	var order []string
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			path := append(append([]string{}, stack[start:]...), name)
			return &CycleError{Path: path}
		}

		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range g.Nodes[name].Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		order = append(order, name)
		return nil
	}

	if err := visit(entry); err != nil {
		return nil, err
	}
	return order, nil
}
