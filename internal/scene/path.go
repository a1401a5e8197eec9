package scene

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Op is a path construction operator.
type Op int

const (
	OpMoveTo Op = iota
	OpLineTo
	OpCubeTo
	OpClose
)

// Segment is one path operator with its points. MoveTo and LineTo use
// Pts[0], CubeTo uses all three, Close uses none.
type Segment struct {
	Op  Op
	Pts [3]vec.Vec2
}

// Path is a sequence of subpaths, each starting with a MoveTo.
type Path []Segment

// kappa places cubic control points so that four curves approximate a
// quarter circle each.
const kappa = 0.5522847498307936

func moveTo(x, y float64) Segment { return Segment{Op: OpMoveTo, Pts: [3]vec.Vec2{{X: x, Y: y}}} }
func lineTo(x, y float64) Segment { return Segment{Op: OpLineTo, Pts: [3]vec.Vec2{{X: x, Y: y}}} }
func closePath() Segment          { return Segment{Op: OpClose} }

func cubeTo(x1, y1, x2, y2, x3, y3 float64) Segment {
	return Segment{Op: OpCubeTo, Pts: [3]vec.Vec2{{X: x1, Y: y1}, {X: x2, Y: y2}, {X: x3, Y: y3}}}
}

// ellipsePath returns a closed ellipse centred on the origin.
func ellipsePath(rx, ry float64) Path {
	kx, ky := kappa*rx, kappa*ry
	return Path{
		moveTo(rx, 0),
		cubeTo(rx, ky, kx, ry, 0, ry),
		cubeTo(-kx, ry, -rx, ky, -rx, 0),
		cubeTo(-rx, -ky, -kx, -ry, 0, -ry),
		cubeTo(kx, -ry, rx, -ky, rx, 0),
		closePath(),
	}
}

// rectPath returns a closed axis-aligned rectangle.
func rectPath(x0, y0, x1, y1 float64) Path {
	return Path{
		moveTo(x0, y0),
		lineTo(x1, y0),
		lineTo(x1, y1),
		lineTo(x0, y1),
		closePath(),
	}
}

// polyPath connects the points with straight lines.
func polyPath(pts []vec.Vec2, closed bool) Path {
	if len(pts) == 0 {
		return nil
	}
	p := make(Path, 0, len(pts)+1)
	p = append(p, moveTo(pts[0].X, pts[0].Y))
	for _, pt := range pts[1:] {
		p = append(p, lineTo(pt.X, pt.Y))
	}
	if closed {
		p = append(p, closePath())
	}
	return p
}

// apply transforms a point using the PDF convention x' = a*x + c*y + e,
// y' = b*x + d*y + f.
func apply(m matrix.Matrix, p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// then returns the transformation which applies first and then second.
func then(first, second matrix.Matrix) matrix.Matrix {
	return matrix.Matrix{
		first[0]*second[0] + first[1]*second[2],
		first[0]*second[1] + first[1]*second[3],
		first[2]*second[0] + first[3]*second[2],
		first[2]*second[1] + first[3]*second[3],
		first[4]*second[0] + first[5]*second[2] + second[4],
		first[4]*second[1] + first[5]*second[3] + second[5],
	}
}

// Transform returns a copy of the path with every point mapped through m.
func (p Path) Transform(m matrix.Matrix) Path {
	out := make(Path, len(p))
	for i, seg := range p {
		out[i].Op = seg.Op
		for j := range seg.Pts {
			out[i].Pts[j] = apply(m, seg.Pts[j])
		}
	}
	return out
}

// points returns the number of meaningful points of a segment.
func (s Segment) points() int {
	switch s.Op {
	case OpMoveTo, OpLineTo:
		return 1
	case OpCubeTo:
		return 3
	}
	return 0
}

// Bounds returns the box spanned by all points of the path, including
// control points. The second result is false for an empty path.
func (p Path) Bounds() (rect.Rect, bool) {
	b := rect.Rect{LLx: math.Inf(1), LLy: math.Inf(1), URx: math.Inf(-1), URy: math.Inf(-1)}
	found := false
	for _, seg := range p {
		for _, pt := range seg.Pts[:seg.points()] {
			b.LLx = math.Min(b.LLx, pt.X)
			b.LLy = math.Min(b.LLy, pt.Y)
			b.URx = math.Max(b.URx, pt.X)
			b.URy = math.Max(b.URy, pt.Y)
			found = true
		}
	}
	if !found {
		return rect.Rect{}, false
	}
	return b, true
}

// union extends a by b.
func union(a, b rect.Rect) rect.Rect {
	return rect.Rect{
		LLx: math.Min(a.LLx, b.LLx),
		LLy: math.Min(a.LLy, b.LLy),
		URx: math.Max(a.URx, b.URx),
		URy: math.Max(a.URy, b.URy),
	}
}
