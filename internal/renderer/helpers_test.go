package renderer

import (
	"image/color"
	"math"
	"testing"

	"seehuhn.de/go/geom/vec"
	pdfcolor "seehuhn.de/go/pdf/graphics/color"

	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

func TestIsPrintFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected bool
	}{
		{"beamer", true},
		{"latex", true},
		{" LaTeX ", true},
		{"html", false},
		{"markdown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if result := isPrintFormat(tt.format); result != tt.expected {
				t.Errorf("isPrintFormat(%q) = %v, want %v", tt.format, result, tt.expected)
			}
		})
	}
}

func TestKindForExtension(t *testing.T) {
	tests := []struct {
		ext      string
		expected OutputKind
	}{
		{"pdf", OutputPDF},
		{".PDF", OutputPDF},
		{"png", OutputPNG},
		{".png", OutputPNG},
		{"", OutputPNG},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if result := KindForExtension(tt.ext); result != tt.expected {
				t.Errorf("KindForExtension(%q) = %v, want %v", tt.ext, result, tt.expected)
			}
		})
	}

	if kindForPath("images/abc.pdf") != OutputPDF {
		t.Error("kindForPath should recognise .pdf")
	}
}

func TestCanvasSize(t *testing.T) {
	tests := []struct {
		name  string
		w, h  float64
		wantW int
		wantH int
	}{
		{"whole", 500, 200, 500, 200},
		{"fractional", 10.2, 3.5, 11, 4},
		{"tiny", 0.1, 0.1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := canvasSize(&scene.Scene{Width: tt.w, Height: tt.h})
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("canvasSize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestOverWhite(t *testing.T) {
	tests := []struct {
		name     string
		in       color.NRGBA
		expected color.NRGBA
	}{
		{"opaque", color.NRGBA{R: 10, G: 20, B: 30, A: 255}, color.NRGBA{R: 10, G: 20, B: 30, A: 255}},
		{"transparent", color.NRGBA{A: 0}, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"half black", color.NRGBA{A: 128}, color.NRGBA{R: 127, G: 127, B: 127, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := overWhite(tt.in); result != tt.expected {
				t.Errorf("overWhite(%v) = %v, want %v", tt.in, result, tt.expected)
			}
		})
	}
}

func TestFlattenCubicEndsOnEndpoint(t *testing.T) {
	p0 := vec.Vec2{X: 0, Y: 0}
	p3 := vec.Vec2{X: 100, Y: 0}

	var pts []vec.Vec2
	flattenCubic(p0, vec.Vec2{X: 0, Y: 100}, vec.Vec2{X: 100, Y: 100}, p3, func(pt vec.Vec2) {
		pts = append(pts, pt)
	})

	if len(pts) < 2 {
		t.Fatalf("Expected the curve to be split, got %d points", len(pts))
	}
	last := pts[len(pts)-1]
	if math.Abs(last.X-p3.X) > 1e-9 || math.Abs(last.Y-p3.Y) > 1e-9 {
		t.Errorf("last point = %v, want %v", last, p3)
	}
}

func TestStrokeOutline(t *testing.T) {
	open := []polyline{{pts: []vec.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}}}}
	if got := len(strokeOutline(open, 2)); got != 3 {
		t.Errorf("open line: got %d polygons, want 2 caps and 1 segment", got)
	}

	closed := []polyline{{pts: []vec.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}, closed: true}}
	if got := len(strokeOutline(closed, 2)); got != 7 {
		t.Errorf("closed triangle: got %d polygons, want 4 joins and 3 segments", got)
	}

	if got := strokeOutline(open, 0); got != nil {
		t.Errorf("zero width stroke should produce nothing, got %d polygons", len(got))
	}
}

func TestFlattenPath(t *testing.T) {
	lines := flattenPath(scene.Flatten(scene.Rect(2, 2)).Items[0].Path)

	if len(lines) != 1 {
		t.Fatalf("Expected 1 subpath, got %d", len(lines))
	}
	if !lines[0].closed {
		t.Error("rectangle subpath should be closed")
	}
	if len(lines[0].pts) != 4 {
		t.Errorf("Expected 4 corners, got %d", len(lines[0].pts))
	}
}

func TestDeviceRGB(t *testing.T) {
	tests := []struct {
		name     string
		in       color.NRGBA
		expected pdfcolor.DeviceRGB
	}{
		{"black", color.NRGBA{A: 255}, pdfcolor.DeviceRGB{0, 0, 0}},
		{"red", color.NRGBA{R: 255, A: 255}, pdfcolor.DeviceRGB{1, 0, 0}},
		{"transparent", color.NRGBA{A: 0}, pdfcolor.DeviceRGB{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := deviceRGB(tt.in).(pdfcolor.DeviceRGB)
			if !ok {
				t.Fatalf("deviceRGB(%v) = %T, want DeviceRGB", tt.in, deviceRGB(tt.in))
			}
			if result != tt.expected {
				t.Errorf("deviceRGB(%v) = %v, want %v", tt.in, result, tt.expected)
			}
		})
	}
}
