package scene

import (
	"image/color"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Margin is the fraction of the drawing's extent kept free on each axis
// when a scene is fitted to a canvas.
const Margin = 0.1

// Default drawing attributes for nodes which set no style.
var (
	DefaultStroke    = color.NRGBA{A: 0xff}
	DefaultLineWidth = 1.0
)

// Item is a single drawing operation with fully resolved style.
type Item struct {
	Path Path
	Box  rect.Rect // extent used for layout

	Fill      color.NRGBA
	HasFill   bool
	Stroke    color.NRGBA
	HasStroke bool
	LineWidth float64
}

// Scene is a flat list of items in painting order. Width and Height are
// zero until the scene is normalised onto a canvas.
type Scene struct {
	Items  []Item
	Width  float64
	Height float64
}

// Flatten resolves transforms and style inheritance of the tree rooted at n.
func Flatten(n *Node) *Scene {
	sc := &Scene{}
	if n != nil {
		sc.flatten(n, matrix.Identity, Style{})
	}
	return sc
}

func (sc *Scene) flatten(n *Node, parent matrix.Matrix, outer Style) {
	m := then(n.Transform, parent)
	style := n.Style.merge(outer)

	switch n.Kind {
	case KindGroup:
		for _, child := range n.Children {
			if child != nil {
				sc.flatten(child, m, style)
			}
		}

	case KindPath:
		p := n.Path.Transform(m)
		box, ok := p.Bounds()
		if !ok {
			return
		}
		it := Item{Path: p, Box: box, LineWidth: DefaultLineWidth}
		if style.Fill != nil && style.Fill.A > 0 {
			it.Fill, it.HasFill = *style.Fill, true
		}
		it.Stroke, it.HasStroke = DefaultStroke, true
		if style.Stroke != nil {
			it.Stroke, it.HasStroke = *style.Stroke, style.Stroke.A > 0
		}
		if style.LineWidth > 0 {
			it.LineWidth = style.LineWidth
		}
		sc.Items = append(sc.Items, it)

	case KindText:
		box, ok := textBox(n.Text, n.FontSize).Transform(m).Bounds()
		if !ok {
			return
		}
		// Text is painted in the stroke color unless a fill is given.
		c := DefaultStroke
		switch {
		case style.Fill != nil && style.Fill.A > 0:
			c = *style.Fill
		case style.Stroke != nil:
			c = *style.Stroke
		}
		sc.Items = append(sc.Items, Item{
			Path:    textPath(n.Text, n.FontSize).Transform(m),
			Box:     box,
			Fill:    c,
			HasFill: c.A > 0,
		})
	}
}

// Bounds returns the union of the item extents. The second result is false
// for an empty scene.
func (sc *Scene) Bounds() (rect.Rect, bool) {
	if len(sc.Items) == 0 {
		return rect.Rect{}, false
	}
	b := sc.Items[0].Box
	for _, it := range sc.Items[1:] {
		b = union(b, it.Box)
	}
	return b, true
}

// Normalize returns a copy of the scene scaled uniformly and centred so
// that its extent, enlarged by Margin, fits a width by height canvas.
// The canvas origin is the lower left corner with y pointing up.
func (sc *Scene) Normalize(width, height float64) *Scene {
	out := &Scene{Width: width, Height: height}
	b, ok := sc.Bounds()
	if !ok {
		return out
	}

	cx, cy := (b.LLx+b.URx)/2, (b.LLy+b.URy)/2
	bw := (b.URx - b.LLx) * (1 + Margin)
	bh := (b.URy - b.LLy) * (1 + Margin)

	s := math.Inf(1)
	if bw > 0 {
		s = width / bw
	}
	if bh > 0 {
		s = math.Min(s, height/bh)
	}
	if math.IsInf(s, 1) {
		s = 1
	}

	m := matrix.Matrix{s, 0, 0, s, width/2 - s*cx, height/2 - s*cy}
	out.Items = make([]Item, len(sc.Items))
	for i, it := range sc.Items {
		it.Path = it.Path.Transform(m)
		ll := apply(m, vec.Vec2{X: it.Box.LLx, Y: it.Box.LLy})
		ur := apply(m, vec.Vec2{X: it.Box.URx, Y: it.Box.URy})
		it.Box = rect.Rect{LLx: ll.X, LLy: ll.Y, URx: ur.X, URy: ur.Y}
		out.Items[i] = it
	}
	return out
}
