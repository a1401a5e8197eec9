package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/vec"

	"github.com/ankek/terraform-provider-diagrams/internal/cache"
	"github.com/ankek/terraform-provider-diagrams/internal/eval"
	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

// RasterIdentity names the raster backend in cache keys.
const RasterIdentity = "raster/1"

// PNGRenderer paints scenes onto RGBA images.
type PNGRenderer struct {
	img    *image.RGBA
	z      *vector.Rasterizer
	height float64
}

// NewPNGRenderer creates a new PNG renderer
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{}
}

// Render paints sc on a white canvas of the scene's size.
func (r *PNGRenderer) Render(sc *scene.Scene) *image.RGBA {
	w, h := canvasSize(sc)
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	r.z = vector.NewRasterizer(w, h)
	r.height = sc.Height

	// Fill white background
	draw.Draw(r.img, r.img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	for _, it := range sc.Items {
		if it.HasFill {
			r.fill(it.Path, it.Fill)
		}
		if it.HasStroke {
			r.stroke(it.Path, it.LineWidth, it.Stroke)
		}
	}
	return r.img
}

// device maps a scene point to pixel space, where y points down.
func (r *PNGRenderer) device(p vec.Vec2) (float32, float32) {
	return float32(p.X), float32(r.height - p.Y)
}

func (r *PNGRenderer) begin() {
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
}

func (r *PNGRenderer) paint(c color.NRGBA) {
	r.z.Draw(r.img, r.img.Bounds(), uniform(c), image.Point{})
}

// fill paints the interior of p. Open subpaths are closed implicitly.
func (r *PNGRenderer) fill(p scene.Path, c color.NRGBA) {
	r.begin()
	open := false
	for _, seg := range p {
		switch seg.Op {
		case scene.OpMoveTo:
			if open {
				r.z.ClosePath()
			}
			r.z.MoveTo(r.device(seg.Pts[0]))
			open = true
		case scene.OpLineTo:
			r.z.LineTo(r.device(seg.Pts[0]))
		case scene.OpCubeTo:
			x1, y1 := r.device(seg.Pts[0])
			x2, y2 := r.device(seg.Pts[1])
			x3, y3 := r.device(seg.Pts[2])
			r.z.CubeTo(x1, y1, x2, y2, x3, y3)
		case scene.OpClose:
			r.z.ClosePath()
			open = false
		}
	}
	if open {
		r.z.ClosePath()
	}
	r.paint(c)
}

// stroke paints the outline of p with round joins and caps.
func (r *PNGRenderer) stroke(p scene.Path, width float64, c color.NRGBA) {
	polys := strokeOutline(flattenPath(p), width)
	if len(polys) == 0 {
		return
	}

	r.begin()
	for _, poly := range polys {
		r.z.MoveTo(r.device(poly[0]))
		for _, pt := range poly[1:] {
			r.z.LineTo(r.device(pt))
		}
		r.z.ClosePath()
	}
	r.paint(c)
}

// writePNG encodes sc as a PNG image.
func writePNG(w io.Writer, sc *scene.Scene) error {
	img := NewPNGRenderer().Render(sc)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// RasterBackend renders every format to PNG.
type RasterBackend struct {
	store *cache.Store
}

// NewRasterBackend creates a raster backend storing artifacts in store.
func NewRasterBackend(store *cache.Store) *RasterBackend {
	return &RasterBackend{store: store}
}

func (b *RasterBackend) Identity() string { return RasterIdentity }

func (b *RasterBackend) Imports() []string { return eval.PreludeImports() }

// Extension is always "png".
func (b *RasterBackend) Extension(string) string { return "png" }

func (b *RasterBackend) Build(ctx context.Context, req Request) Outcome {
	return build(ctx, b.store, req)
}

func (b *RasterBackend) RenderToFile(ctx context.Context, path string, sc *scene.Scene) error {
	return writeArtifact(ctx, b.store, path, func(w io.Writer) error {
		return Export(w, sc, OutputPNG)
	})
}
