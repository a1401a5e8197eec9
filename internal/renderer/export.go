package renderer

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

// Export encodes a normalised scene in the given output kind.
func Export(w io.Writer, sc *scene.Scene, kind OutputKind) error {
	if sc.Width <= 0 || sc.Height <= 0 {
		return fmt.Errorf("cannot export a %gx%g canvas", sc.Width, sc.Height)
	}

	switch kind {
	case OutputPDF:
		return writePDF(w, sc)
	case OutputPNG:
		return writePNG(w, sc)
	}
	return fmt.Errorf("unsupported output kind: %s", kind)
}

// kindForPath infers the output kind from an artifact file name.
func kindForPath(path string) OutputKind {
	return KindForExtension(filepath.Ext(path))
}
