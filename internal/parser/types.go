package parser

import (
	"fmt"

	"github.com/ankek/terraform-provider-diagrams/internal/config"
)

// Attribute is a single key/value pair from a block annotation.
type Attribute struct {
	Key   string
	Value string
}

// Attributes is the ordered attribute list of a block. Values stay untyped
// until one of the Parse functions reads them.
type Attributes []Attribute

// Get returns the value of the first attribute with the given key.
func (a Attributes) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Snippet is one unit of user-authored source plus its rendering attributes.
// A Snippet is owned by the compile call it is passed to. Options.OutputDir,
// when set, must name the compiler's artifact directory.
type Snippet struct {
	Options    config.Options
	Attributes Attributes
	Source     string
}

// Dimensions is the requested output size in points (vector) or pixels (raster).
type Dimensions struct {
	Width  float64
	Height float64
}

// Default output size used when a block does not specify one.
const (
	DefaultWidth  = 500.0
	DefaultHeight = 200.0
)

func (d Dimensions) String() string {
	return fmt.Sprintf("%gx%g", d.Width, d.Height)
}

// EchoPlacement says where the snippet source is shown relative to its image.
type EchoPlacement int

const (
	EchoBelow EchoPlacement = iota
	EchoAbove
)

func (e EchoPlacement) String() string {
	if e == EchoAbove {
		return "above"
	}
	return "below"
}
