// Package logging builds the hclog logger used by the command line filter.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "diagrams"

// New returns a logger writing to w at the given level. Format "json"
// selects JSON output; anything else gives the human readable format.
// A nil writer logs to stderr.
func New(level, format string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       Name,
		Level:      lvl,
		Output:     w,
		JSONFormat: format == "json",
	})
}
