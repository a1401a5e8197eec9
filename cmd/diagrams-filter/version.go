package main

import (
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/ankek/terraform-provider-diagrams/internal/eval"
	"github.com/ankek/terraform-provider-diagrams/internal/renderer"
)

// VersionCommand prints the program version together with the versions
// that take part in every cache key.
type VersionCommand struct {
	Ui      cli.Ui
	Version string
}

func (c *VersionCommand) Run(args []string) int {
	c.Ui.Output(fmt.Sprintf("diagrams-filter %s", c.Version))
	c.Ui.Output(fmt.Sprintf("prelude %s, backends %s %s", eval.PreludeVersion, renderer.RasterIdentity, renderer.VectorIdentity))
	return 0
}

func (c *VersionCommand) Help() string {
	return "Usage: diagrams-filter version\n\n  Prints the version of the filter and of its rendering backends.\n"
}

func (c *VersionCommand) Synopsis() string {
	return "Show the current version"
}
