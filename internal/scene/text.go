package scene

import (
	"golang.org/x/image/font/basicfont"
)

// glyphFace is the bitmap font used for labels. Every backend draws text
// from the same glyph masks so that raster and vector output agree.
var glyphFace = basicfont.Face7x13

// glyphIndex returns the position of r in the font mask, falling back to
// '?' for runes the font does not cover.
func glyphIndex(r rune) int {
	for _, rg := range glyphFace.Ranges {
		if r >= rg.Low && r < rg.High {
			return int(r-rg.Low) + rg.Offset
		}
	}
	if r == '?' {
		return -1
	}
	return glyphIndex('?')
}

// textPath lowers a line of text to filled rectangles, one per horizontal
// run of set pixels. The line is centred on the origin and is size units
// tall.
func textPath(s string, size float64) Path {
	runes := []rune(s)
	if len(runes) == 0 || size <= 0 {
		return nil
	}

	cellH := glyphFace.Height
	scale := size / float64(cellH)
	w := float64(len(runes)*glyphFace.Advance) * scale
	h := float64(cellH) * scale
	left, top := -w/2, h/2

	mask := glyphFace.Mask
	mb := mask.Bounds()

	var p Path
	for i, r := range runes {
		idx := glyphIndex(r)
		if idx < 0 {
			continue
		}
		y0 := mb.Min.Y + idx*cellH
		for row := 0; row < cellH; row++ {
			run := -1
			for col := 0; col <= glyphFace.Width; col++ {
				set := false
				if col < glyphFace.Width {
					_, _, _, a := mask.At(mb.Min.X+col, y0+row).RGBA()
					set = a >= 0x8000
				}
				switch {
				case set && run < 0:
					run = col
				case !set && run >= 0:
					cx := i*glyphFace.Advance + glyphFace.Left
					x0 := left + float64(cx+run)*scale
					x1 := left + float64(cx+col)*scale
					y1 := top - float64(row)*scale
					p = append(p, rectPath(x0, y1-scale, x1, y1)...)
					run = -1
				}
			}
		}
	}
	return p
}

// textBox returns the extent of a line of text, which is the full cell
// area including blank glyphs.
func textBox(s string, size float64) Path {
	n := len([]rune(s))
	if n == 0 || size <= 0 {
		return nil
	}
	scale := size / float64(glyphFace.Height)
	w := float64(n*glyphFace.Advance) * scale
	return rectPath(-w/2, -size/2, w/2, size/2)
}
