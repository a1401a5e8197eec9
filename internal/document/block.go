// Package document reads and writes the markdown documents the filter works
// on. Only fenced code blocks are understood; every other line is carried
// through untouched.
package document

import (
	"strings"

	"github.com/ankek/terraform-provider-diagrams/internal/parser"
)

// Classes that select a code block for rendering.
const (
	ClassDiagram       = "diagram"
	ClassDiagramSource = "diagram-source"
)

// Block is one element of a document: plain text, a fenced code block or an
// image produced by the rewriter. Exactly one field is set; a zero Block is
// an empty placeholder and writes nothing.
type Block struct {
	Text  string
	Code  *CodeBlock
	Image *Image
}

// CodeBlock is a fenced code block together with its attribute braces.
type CodeBlock struct {
	Fence      string // opening fence, e.g. "```" or "~~~~"
	ID         string
	Classes    []string
	Attributes parser.Attributes
	Language   string // bare info string word when no braces are used
	Source     string
}

// HasClass reports whether the block carries class c.
func (c *CodeBlock) HasClass(class string) bool {
	for _, cl := range c.Classes {
		if cl == class {
			return true
		}
	}
	return false
}

// Image references a rendered artifact.
type Image struct {
	ID         string
	Path       string
	Attributes parser.Attributes
}

// IsEmpty reports whether b is a placeholder.
func (b Block) IsEmpty() bool {
	return b.Text == "" && b.Code == nil && b.Image == nil
}

// formatAttributes renders pandoc style attribute braces. It returns the
// empty string when there is nothing to write.
func formatAttributes(id string, classes []string, attrs parser.Attributes) string {
	var parts []string
	if id != "" {
		parts = append(parts, "#"+id)
	}
	for _, c := range classes {
		parts = append(parts, "."+c)
	}
	for _, a := range attrs {
		v := a.Value
		if v == "" || strings.ContainsAny(v, " \t\"}") {
			v = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
		}
		parts = append(parts, a.Key+"="+v)
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, " ") + "}"
}
