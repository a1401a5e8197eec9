package eval

import (
	"fmt"
	"image/color"
	"math"
	"reflect"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
	"seehuhn.de/go/geom/vec"

	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

// PreludeVersion changes whenever a prelude function changes behaviour, so
// that artifacts built by an older prelude are not reused.
const PreludeVersion = "1"

// ShapeType is the cty type of diagram values.
var ShapeType = cty.Capsule("shape", reflect.TypeOf(scene.Node{}))

// ShapeVal wraps a node as a cty value.
func ShapeVal(n *scene.Node) cty.Value {
	return cty.CapsuleVal(ShapeType, n)
}

// AsShape converts v to a node. A list, set or tuple of shapes becomes a
// group; anything else is an error.
func AsShape(v cty.Value) (*scene.Node, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("expected a shape, got null")
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("expected a shape, got an unknown value")
	}

	ty := v.Type()
	switch {
	case ty.Equals(ShapeType):
		return v.EncapsulatedValue().(*scene.Node), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		children := make([]*scene.Node, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			n, err := AsShape(ev)
			if err != nil {
				return nil, err
			}
			children = append(children, n)
		}
		return scene.Group(children...), nil
	}
	return nil, fmt.Errorf("expected a shape, got %s", ty.FriendlyName())
}

// AsShapes converts a list of shapes to its elements.
func AsShapes(v cty.Value) ([]*scene.Node, error) {
	n, err := AsShape(v)
	if err != nil {
		return nil, err
	}
	if v.Type().Equals(ShapeType) {
		return []*scene.Node{n}, nil
	}
	return n.Children, nil
}

// Functions returns the prelude functions available to every snippet.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		// shapes
		"circle":          shapeFunc(numParams("radius"), circleImpl),
		"ellipse":         shapeFunc(numParams("rx", "ry"), ellipseImpl),
		"rect":            shapeFunc(numParams("width", "height"), rectImpl),
		"square":          shapeFunc(numParams("side"), squareImpl),
		"polygon":         shapeFunc(pointsParams(), polygonImpl),
		"regular_polygon": shapeFunc(numParams("sides", "radius"), regularPolygonImpl),
		"line":            shapeFunc(pointsParams(), lineImpl),
		"text":            shapeFunc([]function.Parameter{{Name: "text", Type: cty.String}, {Name: "size", Type: cty.Number}}, textImpl),

		// transforms
		"translate": shapeFunc(shapeParams("dx", "dy"), translateImpl),
		"scale":     shapeFunc(shapeParams("factor"), scaleImpl),
		"scale_xy":  shapeFunc(shapeParams("sx", "sy"), scaleXYImpl),
		"rotate":    shapeFunc(shapeParams("degrees"), rotateImpl),

		// style
		"fill":       shapeFunc(shapeColorParams(), fillImpl),
		"stroke":     shapeFunc(shapeColorParams(), strokeImpl),
		"line_width": shapeFunc(shapeParams("width"), lineWidthImpl),
		"lighten":    colorFunc(scene.Lighten),
		"darken":     colorFunc(scene.Darken),

		// layout
		"group": groupFunc,
		"hcat":  shapeFunc(shapeParams("gap"), hcatImpl),
		"vcat":  shapeFunc(shapeParams("gap"), vcatImpl),

		// math
		"sin":  mathFunc(func(x float64) (float64, error) { return math.Sin(x), nil }),
		"cos":  mathFunc(func(x float64) (float64, error) { return math.Cos(x), nil }),
		"sqrt": mathFunc(sqrt),

		// cty standard library
		"abs":    stdlib.AbsoluteFunc,
		"ceil":   stdlib.CeilFunc,
		"floor":  stdlib.FloorFunc,
		"max":    stdlib.MaxFunc,
		"min":    stdlib.MinFunc,
		"upper":  stdlib.UpperFunc,
		"lower":  stdlib.LowerFunc,
		"format": stdlib.FormatFunc,
		"join":   stdlib.JoinFunc,
		"concat": stdlib.ConcatFunc,
		"range":  stdlib.RangeFunc,
		"length": stdlib.LengthFunc,
	}
}

// Variables returns the prelude constants.
func Variables() map[string]cty.Value {
	return map[string]cty.Value{
		"pi": cty.NumberFloatVal(math.Pi),
	}
}

// PreludeImports lists everything the prelude injects into a snippet,
// ending with the prelude version. The list is part of the cache key.
func PreludeImports() []string {
	fns := Functions()
	vars := Variables()
	names := make([]string, 0, len(fns)+len(vars)+1)
	for name := range fns {
		names = append(names, name)
	}
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, "prelude/"+PreludeVersion)
}

type shapeImpl func(args []cty.Value) (*scene.Node, error)

func shapeFunc(params []function.Parameter, impl shapeImpl) function.Function {
	return function.New(&function.Spec{
		Params: params,
		Type:   function.StaticReturnType(ShapeType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			n, err := impl(args)
			if err != nil {
				return cty.NilVal, err
			}
			return ShapeVal(n), nil
		},
	})
}

func numParams(names ...string) []function.Parameter {
	params := make([]function.Parameter, len(names))
	for i, name := range names {
		params[i] = function.Parameter{Name: name, Type: cty.Number}
	}
	return params
}

func shapeParams(names ...string) []function.Parameter {
	return append([]function.Parameter{{Name: "shape", Type: cty.DynamicPseudoType}}, numParams(names...)...)
}

func shapeColorParams() []function.Parameter {
	return []function.Parameter{
		{Name: "shape", Type: cty.DynamicPseudoType},
		{Name: "color", Type: cty.String},
	}
}

func pointsParams() []function.Parameter {
	return []function.Parameter{{Name: "points", Type: cty.List(cty.List(cty.Number))}}
}

// number reads argument i as a float64.
func number(args []cty.Value, i int) (float64, error) {
	var f float64
	if err := gocty.FromCtyValue(args[i], &f); err != nil {
		return 0, function.NewArgError(i, err)
	}
	return f, nil
}

func numbers(args []cty.Value, from int) ([]float64, error) {
	out := make([]float64, 0, len(args)-from)
	for i := from; i < len(args); i++ {
		f, err := number(args, i)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func shapeArg(args []cty.Value, i int) (*scene.Node, error) {
	n, err := AsShape(args[i])
	if err != nil {
		return nil, function.NewArgError(i, err)
	}
	return n, nil
}

func pointsArg(args []cty.Value, i int) ([]vec.Vec2, error) {
	var raw [][]float64
	if err := gocty.FromCtyValue(args[i], &raw); err != nil {
		return nil, function.NewArgError(i, err)
	}
	pts := make([]vec.Vec2, len(raw))
	for j, p := range raw {
		if len(p) != 2 {
			return nil, function.NewArgErrorf(i, "point %d has %d coordinates, want 2", j, len(p))
		}
		pts[j] = vec.Vec2{X: p[0], Y: p[1]}
	}
	return pts, nil
}

func circleImpl(args []cty.Value) (*scene.Node, error) {
	r, err := number(args, 0)
	if err != nil {
		return nil, err
	}
	return scene.Circle(r), nil
}

func ellipseImpl(args []cty.Value) (*scene.Node, error) {
	v, err := numbers(args, 0)
	if err != nil {
		return nil, err
	}
	return scene.Ellipse(v[0], v[1]), nil
}

func rectImpl(args []cty.Value) (*scene.Node, error) {
	v, err := numbers(args, 0)
	if err != nil {
		return nil, err
	}
	return scene.Rect(v[0], v[1]), nil
}

func squareImpl(args []cty.Value) (*scene.Node, error) {
	s, err := number(args, 0)
	if err != nil {
		return nil, err
	}
	return scene.Rect(s, s), nil
}

func polygonImpl(args []cty.Value) (*scene.Node, error) {
	pts, err := pointsArg(args, 0)
	if err != nil {
		return nil, err
	}
	if len(pts) < 3 {
		return nil, function.NewArgErrorf(0, "a polygon needs at least 3 points, got %d", len(pts))
	}
	return scene.Polygon(pts), nil
}

func regularPolygonImpl(args []cty.Value) (*scene.Node, error) {
	var n int
	if err := gocty.FromCtyValue(args[0], &n); err != nil {
		return nil, function.NewArgError(0, err)
	}
	if n < 3 {
		return nil, function.NewArgErrorf(0, "a polygon needs at least 3 sides, got %d", n)
	}
	r, err := number(args, 1)
	if err != nil {
		return nil, err
	}
	return scene.RegularPolygon(n, r), nil
}

func lineImpl(args []cty.Value) (*scene.Node, error) {
	pts, err := pointsArg(args, 0)
	if err != nil {
		return nil, err
	}
	if len(pts) < 2 {
		return nil, function.NewArgErrorf(0, "a line needs at least 2 points, got %d", len(pts))
	}
	return scene.Polyline(pts), nil
}

func textImpl(args []cty.Value) (*scene.Node, error) {
	size, err := number(args, 1)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, function.NewArgErrorf(1, "text size must be positive")
	}
	return scene.Text(args[0].AsString(), size), nil
}

func translateImpl(args []cty.Value) (*scene.Node, error) {
	n, err := shapeArg(args, 0)
	if err != nil {
		return nil, err
	}
	v, err := numbers(args, 1)
	if err != nil {
		return nil, err
	}
	return scene.Translate(n, v[0], v[1]), nil
}

func scaleImpl(args []cty.Value) (*scene.Node, error) {
	n, err := shapeArg(args, 0)
	if err != nil {
		return nil, err
	}
	f, err := number(args, 1)
	if err != nil {
		return nil, err
	}
	return scene.Scale(n, f, f), nil
}

func scaleXYImpl(args []cty.Value) (*scene.Node, error) {
	n, err := shapeArg(args, 0)
	if err != nil {
		return nil, err
	}
	v, err := numbers(args, 1)
	if err != nil {
		return nil, err
	}
	return scene.Scale(n, v[0], v[1]), nil
}

func rotateImpl(args []cty.Value) (*scene.Node, error) {
	n, err := shapeArg(args, 0)
	if err != nil {
		return nil, err
	}
	deg, err := number(args, 1)
	if err != nil {
		return nil, err
	}
	return scene.Rotate(n, deg), nil
}

func colorArg(args []cty.Value, i int) (color.NRGBA, error) {
	c, err := scene.ParseColor(args[i].AsString())
	if err != nil {
		return color.NRGBA{}, function.NewArgError(i, err)
	}
	return c, nil
}

func fillImpl(args []cty.Value) (*scene.Node, error) {
	n, err := shapeArg(args, 0)
	if err != nil {
		return nil, err
	}
	c, err := colorArg(args, 1)
	if err != nil {
		return nil, err
	}
	return scene.WithFill(n, c), nil
}

func strokeImpl(args []cty.Value) (*scene.Node, error) {
	n, err := shapeArg(args, 0)
	if err != nil {
		return nil, err
	}
	c, err := colorArg(args, 1)
	if err != nil {
		return nil, err
	}
	return scene.WithStroke(n, c), nil
}

func lineWidthImpl(args []cty.Value) (*scene.Node, error) {
	n, err := shapeArg(args, 0)
	if err != nil {
		return nil, err
	}
	w, err := number(args, 1)
	if err != nil {
		return nil, err
	}
	if w <= 0 {
		return nil, function.NewArgErrorf(1, "line width must be positive")
	}
	return scene.WithLineWidth(n, w), nil
}

func hcatImpl(args []cty.Value) (*scene.Node, error) {
	return catImpl(args, scene.HCat)
}

func vcatImpl(args []cty.Value) (*scene.Node, error) {
	return catImpl(args, scene.VCat)
}

func catImpl(args []cty.Value, cat func([]*scene.Node, float64) *scene.Node) (*scene.Node, error) {
	nodes, err := AsShapes(args[0])
	if err != nil {
		return nil, function.NewArgError(0, err)
	}
	gap, err := number(args, 1)
	if err != nil {
		return nil, err
	}
	return cat(nodes, gap), nil
}

var groupFunc = function.New(&function.Spec{
	VarParam: &function.Parameter{Name: "shapes", Type: cty.DynamicPseudoType},
	Type:     function.StaticReturnType(ShapeType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		children := make([]*scene.Node, len(args))
		for i := range args {
			n, err := shapeArg(args, i)
			if err != nil {
				return cty.NilVal, err
			}
			children[i] = n
		}
		return ShapeVal(scene.Group(children...)), nil
	},
})

func colorFunc(mix func(c color.NRGBA, fraction float64) color.NRGBA) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "color", Type: cty.String},
			{Name: "fraction", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			c, err := colorArg(args, 0)
			if err != nil {
				return cty.NilVal, err
			}
			f, err := number(args, 1)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(scene.Hex(mix(c, f))), nil
		},
	})
}

func mathFunc(fn func(float64) (float64, error)) function.Function {
	return function.New(&function.Spec{
		Params: numParams("x"),
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			x, err := number(args, 0)
			if err != nil {
				return cty.NilVal, err
			}
			y, err := fn(x)
			if err != nil {
				return cty.NilVal, function.NewArgError(0, err)
			}
			return cty.NumberFloatVal(y), nil
		},
	})
}

func sqrt(x float64) (float64, error) {
	if x < 0 {
		return 0, fmt.Errorf("cannot take the square root of a negative number")
	}
	return math.Sqrt(x), nil
}
