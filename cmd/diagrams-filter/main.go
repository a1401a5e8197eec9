// Command diagrams-filter rewrites a markdown document, replacing every
// diagram code block with a reference to its rendered artifact.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
)

// version is set by the release build.
var version = "dev"

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, afero.NewOsFs()))
}

func realMain(args []string, stdin io.Reader, stdout, stderr io.Writer, fs afero.Fs) int {
	ui := &cli.BasicUi{
		Reader:      stdin,
		Writer:      stdout,
		ErrorWriter: stderr,
	}

	c := cli.NewCLI("diagrams-filter", version)
	c.Args = args
	c.HelpWriter = stderr
	c.Commands = map[string]cli.CommandFactory{
		"render": func() (cli.Command, error) {
			return &RenderCommand{
				Ui:     ui,
				Stdin:  stdin,
				Stdout: stdout,
				Stderr: stderr,
				Fs:     fs,
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{Ui: ui, Version: version}, nil
		},
	}

	status, err := c.Run()
	if err != nil {
		fmt.Fprintf(stderr, "Error executing CLI: %s\n", err)
		return 1
	}
	return status
}
