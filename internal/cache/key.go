// Package cache derives content addresses for diagrams and stores the
// rendered artifacts under them.
package cache

import (
	_ "crypto/sha256" // registers digest.Canonical
	"fmt"
	"io"
	"strconv"

	"github.com/opencontainers/go-digest"

	"github.com/ankek/terraform-provider-diagrams/internal/parser"
)

// Key is the content address of one diagram build.
type Key struct {
	d digest.Digest
}

// Hex returns the hex encoded digest, which is used as the artifact file name.
func (k Key) Hex() string {
	return k.d.Encoded()
}

// Digest returns the key with its algorithm prefix, e.g. "sha256:...".
func (k Key) Digest() digest.Digest {
	return k.d
}

func (k Key) String() string {
	return k.d.String()
}

// IsZero reports whether k was never derived.
func (k Key) IsZero() bool {
	return k.d == ""
}

// DeriveKey hashes everything that influences a rendered diagram: the
// exact source, the name of the diagram binding, the prelude imports, the
// output dimensions and the backend identity. Every field is length
// prefixed, so moving bytes between adjacent fields changes the key.
func DeriveKey(source, expression string, imports []string, dims parser.Dimensions, backend string) Key {
	digester := digest.Canonical.Digester()
	h := digester.Hash()

	writeField(h, "source", source)
	writeField(h, "expression", expression)
	writeField(h, "imports", strconv.Itoa(len(imports)))
	for _, imp := range imports {
		writeField(h, "import", imp)
	}
	writeField(h, "width", strconv.FormatFloat(dims.Width, 'g', -1, 64))
	writeField(h, "height", strconv.FormatFloat(dims.Height, 'g', -1, 64))
	writeField(h, "backend", backend)

	return Key{d: digester.Digest()}
}

func writeField(w io.Writer, name, value string) {
	// hash.Hash writes never fail
	_, _ = fmt.Fprintf(w, "%s %d:%s\n", name, len(value), value)
}
