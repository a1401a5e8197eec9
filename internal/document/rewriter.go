package document

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/ankek/terraform-provider-diagrams/internal/config"
	"github.com/ankek/terraform-provider-diagrams/internal/interfaces"
	"github.com/ankek/terraform-provider-diagrams/internal/parser"
)

// EchoLanguage is the fence language of echoed diagram sources.
const EchoLanguage = "hcl"

// Rewriter replaces diagram code blocks with references to their artifacts.
type Rewriter struct {
	Compiler interfaces.Compiler
	Options  config.Options
}

// Selected reports whether a block is rendered by the rewriter.
func Selected(b Block) bool {
	return b.Code != nil && (b.Code.HasClass(ClassDiagram) || b.Code.HasClass(ClassDiagramSource))
}

// Rewrite compiles every selected block and returns the rewritten document.
// A block that fails to parse or evaluate becomes an empty placeholder while
// the rest of the document is still processed. Fatal compile errors abort the
// rewrite.
func (r *Rewriter) Rewrite(ctx context.Context, blocks []Block) ([]Block, error) {
	logger := hclog.FromContext(ctx)

	var (
		indices  []int
		snippets []parser.Snippet
	)
	for i, b := range blocks {
		if !Selected(b) {
			continue
		}
		indices = append(indices, i)
		snippets = append(snippets, parser.Snippet{
			Options:    r.Options,
			Attributes: b.Code.Attributes,
			Source:     b.Code.Source,
		})
	}
	if len(snippets) == 0 {
		return blocks, nil
	}

	logger.Debug("rewriting document", "diagrams", len(snippets))

	results, err := r.Compiler.CompileAll(ctx, snippets)
	if err != nil {
		return nil, fmt.Errorf("failed to compile diagrams: %w", err)
	}

	replaced := make(map[int][]Block, len(indices))
	for n, i := range indices {
		cb := blocks[i].Code
		res := results[n]
		if !res.OK() {
			replaced[i] = []Block{{}}
			continue
		}

		img := Block{Image: &Image{ID: cb.ID, Path: res.Path, Attributes: sizeAttributes(cb.Attributes)}}
		if !cb.HasClass(ClassDiagramSource) {
			replaced[i] = []Block{img}
			continue
		}

		echo := Block{Code: &CodeBlock{
			Fence:    cb.Fence,
			Language: EchoLanguage,
			Classes:  []string{EchoLanguage},
			Source:   cb.Source,
		}}
		if parser.ParseEcho(cb.Attributes) == parser.EchoAbove {
			replaced[i] = []Block{echo, img}
		} else {
			replaced[i] = []Block{img, echo}
		}
	}

	out := make([]Block, 0, len(blocks)+len(indices))
	for i, b := range blocks {
		if rb, ok := replaced[i]; ok {
			out = append(out, rb...)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// sizeAttributes keeps the attributes that still mean something on the image.
func sizeAttributes(attrs parser.Attributes) parser.Attributes {
	var out parser.Attributes
	for _, a := range attrs {
		if a.Key == parser.AttrWidth || a.Key == parser.AttrHeight {
			out = append(out, a)
		}
	}
	return out
}
