package renderer

import (
	"math"
	"strings"

	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

// printFormats are the output formats which embed vector graphics.
var printFormats = map[string]bool{
	"beamer": true,
	"latex":  true,
}

// isPrintFormat reports whether format is a print format.
func isPrintFormat(format string) bool {
	return printFormats[strings.ToLower(strings.TrimSpace(format))]
}

// KindForExtension maps an artifact extension back to its kind.
func KindForExtension(ext string) OutputKind {
	if strings.EqualFold(strings.TrimPrefix(ext, "."), "pdf") {
		return OutputPDF
	}
	return OutputPNG
}

// canvasSize rounds the requested dimensions up to whole pixels.
func canvasSize(sc *scene.Scene) (int, int) {
	w := int(math.Ceil(sc.Width))
	h := int(math.Ceil(sc.Height))
	return max(w, 1), max(h, 1)
}
