package renderer

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

// flatness is the maximum distance, in pixels, between a curve and the
// line segments replacing it.
const flatness = 0.25

// joinSteps is the number of edges used for round joins and caps.
const joinSteps = 16

// polyline is a flattened subpath.
type polyline struct {
	pts    []vec.Vec2
	closed bool
}

// flattenPath replaces the curves of p by line segments.
func flattenPath(p scene.Path) []polyline {
	var out []polyline
	var cur *polyline
	var pen vec.Vec2

	for _, seg := range p {
		switch seg.Op {
		case scene.OpMoveTo:
			out = append(out, polyline{pts: []vec.Vec2{seg.Pts[0]}})
			cur = &out[len(out)-1]
			pen = seg.Pts[0]
		case scene.OpLineTo:
			if cur == nil {
				continue
			}
			cur.pts = append(cur.pts, seg.Pts[0])
			pen = seg.Pts[0]
		case scene.OpCubeTo:
			if cur == nil {
				continue
			}
			flattenCubic(pen, seg.Pts[0], seg.Pts[1], seg.Pts[2], func(pt vec.Vec2) {
				cur.pts = append(cur.pts, pt)
			})
			pen = seg.Pts[2]
		case scene.OpClose:
			if cur == nil {
				continue
			}
			cur.closed = true
			pen = cur.pts[0]
		}
	}
	return out
}

// flattenCubic emits points along a cubic Bézier curve, excluding p0. The
// number of segments follows Wang's formula.
func flattenCubic(p0, p1, p2, p3 vec.Vec2, emit func(vec.Vec2)) {
	d1 := p0.Sub(p1.Mul(2)).Add(p2)
	d2 := p1.Sub(p2.Mul(2)).Add(p3)

	n := 1
	if m := math.Max(d1.Length(), d2.Length()); m > 0 {
		if nf := math.Sqrt(3 * m / (4 * flatness)); nf > 1 {
			n = int(math.Ceil(nf))
		}
	}

	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		omt := 1 - t
		pt := p0.Mul(omt * omt * omt).
			Add(p1.Mul(3 * omt * omt * t)).
			Add(p2.Mul(3 * omt * t * t)).
			Add(p3.Mul(t * t * t))
		emit(pt)
	}
}

// strokeOutline returns polygons whose union is the stroke of the
// polylines: one quad per segment and a disc at every vertex, which gives
// round joins and caps. All polygons have the same orientation, so
// overlaps do not cancel out under the nonzero rule.
func strokeOutline(lines []polyline, width float64) [][]vec.Vec2 {
	hw := width / 2
	if hw <= 0 {
		return nil
	}

	var polys [][]vec.Vec2
	for _, l := range lines {
		pts := l.pts
		if l.closed && len(pts) > 1 && pts[0] != pts[len(pts)-1] {
			pts = append(pts[:len(pts):len(pts)], pts[0])
		}
		for i, a := range pts {
			polys = append(polys, disc(a, hw))
			if i == len(pts)-1 {
				break
			}
			b := pts[i+1]
			d := b.Sub(a)
			length := d.Length()
			if length == 0 {
				continue
			}
			n := vec.Vec2{X: -d.Y, Y: d.X}.Mul(hw / length)
			polys = append(polys, []vec.Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)})
		}
	}
	return polys
}

// disc approximates a circle by a clockwise polygon.
func disc(c vec.Vec2, r float64) []vec.Vec2 {
	pts := make([]vec.Vec2, joinSteps)
	for i := range pts {
		phi := -2 * math.Pi * float64(i) / joinSteps
		pts[i] = vec.Vec2{X: c.X + r*math.Cos(phi), Y: c.Y + r*math.Sin(phi)}
	}
	return pts
}
