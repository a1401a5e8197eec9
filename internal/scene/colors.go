package scene

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// namedColors covers the palette used in diagrams most of the time.
var namedColors = map[string]color.NRGBA{
	"black":  {0x00, 0x00, 0x00, 0xff},
	"white":  {0xff, 0xff, 0xff, 0xff},
	"gray":   {0x75, 0x75, 0x75, 0xff}, // Gray
	"grey":   {0x75, 0x75, 0x75, 0xff},
	"red":    {0xE5, 0x39, 0x35, 0xff}, // Red
	"green":  {0x43, 0xA0, 0x47, 0xff}, // Green
	"blue":   {0x1E, 0x88, 0xE5, 0xff}, // Blue
	"orange": {0xFB, 0x8C, 0x00, 0xff}, // Orange
	"purple": {0x8E, 0x24, 0xAA, 0xff}, // Purple
	"cyan":   {0x00, 0xAC, 0xC1, 0xff}, // Cyan
	"yellow": {0xFD, 0xD8, 0x35, 0xff}, // Yellow
	"teal":   {0x00, 0x89, 0x7B, 0xff},
	"brown":  {0x6D, 0x4C, 0x41, 0xff},
	"pink":   {0xD8, 0x1B, 0x60, 0xff},

	"none":        {},
	"transparent": {},
}

// ParseColor parses a color name or a hex color in #rgb, #rrggbb or
// #rrggbbaa form.
func ParseColor(s string) (color.NRGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[name]; ok {
		return c, nil
	}

	if !strings.HasPrefix(name, "#") {
		return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
	}
	hex := name[1:]

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// Lighten mixes c with white by the given fraction.
func Lighten(c color.NRGBA, fraction float64) color.NRGBA {
	fraction = clamp01(fraction)
	mix := func(v uint8) uint8 {
		return uint8(float64(v) + (255-float64(v))*fraction)
	}
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

// Darken scales the channels of c towards black by the given fraction.
func Darken(c color.NRGBA, fraction float64) color.NRGBA {
	fraction = clamp01(fraction)
	mix := func(v uint8) uint8 {
		return uint8(float64(v) * (1 - fraction))
	}
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
