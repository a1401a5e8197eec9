package renderer

import (
	"context"
	"fmt"
	"io"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"

	"github.com/ankek/terraform-provider-diagrams/internal/cache"
	"github.com/ankek/terraform-provider-diagrams/internal/eval"
	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

// VectorIdentity names the vector backend in cache keys.
const VectorIdentity = "vector/1"

// writePDF writes sc as a single page PDF whose media box is the canvas.
// Scene coordinates already use the PDF convention of y pointing up.
func writePDF(w io.Writer, sc *scene.Scene) error {
	paper := &pdf.Rectangle{URx: sc.Width, URy: sc.Height}

	page, err := document.WriteSinglePage(w, paper, pdf.V1_7, nil)
	if err != nil {
		return fmt.Errorf("failed to start PDF: %w", err)
	}

	page.SetLineJoin(graphics.LineJoinRound)
	page.SetLineCap(graphics.LineCapRound)

	for _, it := range sc.Items {
		if !it.HasFill && !it.HasStroke {
			continue
		}

		page.PushGraphicsState()
		if it.HasFill {
			page.SetFillColor(deviceRGB(it.Fill))
		}
		if it.HasStroke {
			page.SetStrokeColor(deviceRGB(it.Stroke))
			page.SetLineWidth(it.LineWidth)
		}

		for _, seg := range it.Path {
			switch seg.Op {
			case scene.OpMoveTo:
				page.MoveTo(seg.Pts[0].X, seg.Pts[0].Y)
			case scene.OpLineTo:
				page.LineTo(seg.Pts[0].X, seg.Pts[0].Y)
			case scene.OpCubeTo:
				page.CurveTo(seg.Pts[0].X, seg.Pts[0].Y, seg.Pts[1].X, seg.Pts[1].Y, seg.Pts[2].X, seg.Pts[2].Y)
			case scene.OpClose:
				page.ClosePath()
			}
		}

		switch {
		case it.HasFill && it.HasStroke:
			page.FillAndStroke()
		case it.HasFill:
			page.Fill()
		default:
			page.Stroke()
		}
		page.PopGraphicsState()
	}

	if err := page.Close(); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// VectorBackend renders print formats to PDF and everything else to PNG.
type VectorBackend struct {
	store *cache.Store
}

// NewVectorBackend creates a vector backend storing artifacts in store.
func NewVectorBackend(store *cache.Store) *VectorBackend {
	return &VectorBackend{store: store}
}

func (b *VectorBackend) Identity() string { return VectorIdentity }

func (b *VectorBackend) Imports() []string { return eval.PreludeImports() }

// Extension returns "pdf" for beamer and latex output and "png" otherwise.
func (b *VectorBackend) Extension(format string) string {
	if isPrintFormat(format) {
		return "pdf"
	}
	return "png"
}

func (b *VectorBackend) Build(ctx context.Context, req Request) Outcome {
	return build(ctx, b.store, req)
}

// RenderToFile picks the encoding from the file extension.
func (b *VectorBackend) RenderToFile(ctx context.Context, path string, sc *scene.Scene) error {
	kind := kindForPath(path)
	return writeArtifact(ctx, b.store, path, func(w io.Writer) error {
		return Export(w, sc, kind)
	})
}
