package renderer

import (
	"image"
	"image/color"

	pdfcolor "seehuhn.de/go/pdf/graphics/color"
)

// background is the canvas color of raster output.
var background = color.White

// overWhite composites c over a white background.
func overWhite(c color.NRGBA) color.NRGBA {
	if c.A == 0xff {
		return c
	}
	a := float64(c.A) / 255
	mix := func(v uint8) uint8 {
		return uint8(float64(v)*a + 255*(1-a) + 0.5)
	}
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: 0xff}
}

// deviceRGB converts c for use in PDF content streams. DeviceRGB has no
// alpha channel, so translucent colors are flattened against white.
func deviceRGB(c color.NRGBA) pdfcolor.Color {
	c = overWhite(c)
	return pdfcolor.DeviceRGB{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

// uniform returns a paint source for the raster backend.
func uniform(c color.NRGBA) image.Image {
	return image.NewUniform(c)
}
