// Package scene contains the backend-independent description of a diagram:
// a tree of shapes with transforms and styles, and its flattened,
// normalised form which the rendering backends consume.
package scene

import (
	"image/color"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Kind distinguishes the node types of a diagram tree.
type Kind int

const (
	KindPath Kind = iota
	KindText
	KindGroup
)

// Style holds the drawing attributes of a node. Unset fields are inherited
// from the enclosing node; a value set on an inner node wins over one set
// further out.
type Style struct {
	Fill      *color.NRGBA
	Stroke    *color.NRGBA
	LineWidth float64 // 0 means inherit
}

// merge returns s with unset fields taken from outer.
func (s Style) merge(outer Style) Style {
	if s.Fill == nil {
		s.Fill = outer.Fill
	}
	if s.Stroke == nil {
		s.Stroke = outer.Stroke
	}
	if s.LineWidth == 0 {
		s.LineWidth = outer.LineWidth
	}
	return s
}

// Node is an immutable diagram element. Functions that modify a diagram
// return a new Node wrapping the old one.
type Node struct {
	Kind Kind

	Path Path // KindPath

	Text     string  // KindText
	FontSize float64 // KindText, height of a line in diagram units

	Children []*Node // KindGroup

	// Transform maps the node's local coordinates to its parent's.
	Transform matrix.Matrix
	Style     Style
}

// Circle returns a circle of radius r centred on the origin.
func Circle(r float64) *Node {
	return Ellipse(r, r)
}

// Ellipse returns an axis-aligned ellipse centred on the origin.
func Ellipse(rx, ry float64) *Node {
	return &Node{Kind: KindPath, Path: ellipsePath(rx, ry), Transform: matrix.Identity}
}

// Rect returns a w by h rectangle centred on the origin.
func Rect(w, h float64) *Node {
	return &Node{Kind: KindPath, Path: rectPath(-w/2, -h/2, w/2, h/2), Transform: matrix.Identity}
}

// Polygon returns the closed polygon through the given points.
func Polygon(pts []vec.Vec2) *Node {
	return &Node{Kind: KindPath, Path: polyPath(pts, true), Transform: matrix.Identity}
}

// RegularPolygon returns a regular n-gon with circumradius r and a vertex
// pointing up.
func RegularPolygon(n int, r float64) *Node {
	pts := make([]vec.Vec2, n)
	for i := range pts {
		phi := math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		pts[i] = vec.Vec2{X: r * math.Cos(phi), Y: r * math.Sin(phi)}
	}
	return Polygon(pts)
}

// Polyline returns the open path through the given points.
func Polyline(pts []vec.Vec2) *Node {
	return &Node{Kind: KindPath, Path: polyPath(pts, false), Transform: matrix.Identity}
}

// Text returns a single line of text centred on the origin.
func Text(s string, size float64) *Node {
	return &Node{Kind: KindText, Text: s, FontSize: size, Transform: matrix.Identity}
}

// Group combines several nodes into one.
func Group(children ...*Node) *Node {
	return &Node{Kind: KindGroup, Children: children, Transform: matrix.Identity}
}

// wrap returns a group holding only n, with the given transform and style.
func wrap(n *Node, m matrix.Matrix, style Style) *Node {
	return &Node{Kind: KindGroup, Children: []*Node{n}, Transform: m, Style: style}
}

// Translate moves n by (dx, dy).
func Translate(n *Node, dx, dy float64) *Node {
	return wrap(n, matrix.Matrix{1, 0, 0, 1, dx, dy}, Style{})
}

// Scale scales n by sx horizontally and sy vertically about the origin.
func Scale(n *Node, sx, sy float64) *Node {
	return wrap(n, matrix.Matrix{sx, 0, 0, sy, 0, 0}, Style{})
}

// Rotate turns n counter-clockwise about the origin.
func Rotate(n *Node, degrees float64) *Node {
	phi := degrees * math.Pi / 180
	sin, cos := math.Sin(phi), math.Cos(phi)
	return wrap(n, matrix.Matrix{cos, sin, -sin, cos, 0, 0}, Style{})
}

// WithFill sets the fill color of n and of any descendant without its own.
func WithFill(n *Node, c color.NRGBA) *Node {
	return wrap(n, matrix.Identity, Style{Fill: &c})
}

// WithStroke sets the stroke color.
func WithStroke(n *Node, c color.NRGBA) *Node {
	return wrap(n, matrix.Identity, Style{Stroke: &c})
}

// WithLineWidth sets the stroke width in output units.
func WithLineWidth(n *Node, w float64) *Node {
	return wrap(n, matrix.Identity, Style{LineWidth: w})
}

// Bounds returns the bounding box of n in its parent's coordinates. The
// second result is false if n draws nothing.
func (n *Node) Bounds() (rect.Rect, bool) {
	sc := Flatten(n)
	return sc.Bounds()
}

// HCat places the nodes side by side from left to right, gap apart, keeping
// their vertical positions.
func HCat(nodes []*Node, gap float64) *Node {
	return cat(nodes, gap, true)
}

// VCat stacks the nodes from top to bottom, gap apart, keeping their
// horizontal positions.
func VCat(nodes []*Node, gap float64) *Node {
	return cat(nodes, gap, false)
}

func cat(nodes []*Node, gap float64, horizontal bool) *Node {
	placed := make([]*Node, 0, len(nodes))
	var edge float64
	first := true
	for _, n := range nodes {
		b, ok := n.Bounds()
		if !ok {
			placed = append(placed, n)
			continue
		}
		if first {
			placed = append(placed, n)
			if horizontal {
				edge = b.URx
			} else {
				edge = b.LLy
			}
			first = false
			continue
		}
		if horizontal {
			dx := edge + gap - b.LLx
			placed = append(placed, Translate(n, dx, 0))
			edge = b.URx + dx
		} else {
			dy := edge - gap - b.URy
			placed = append(placed, Translate(n, 0, dy))
			edge = b.LLy + dy
		}
	}
	return Group(placed...)
}
