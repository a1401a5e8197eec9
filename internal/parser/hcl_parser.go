package parser

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// SnippetFilename is the name under which snippet sources appear in
// diagnostics.
const SnippetFilename = "snippet.hcl"

// Program is a parsed snippet: a flat set of named bindings.
type Program struct {
	Source   string
	Files    map[string]*hcl.File
	Bindings hcl.Attributes
}

// Names returns the binding names in sorted order.
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.Bindings))
	for name := range p.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseError reports that a snippet is not a valid program fragment.
type ParseError struct {
	Diagnostics hcl.Diagnostics
	Files       map[string]*hcl.File
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Diagnostics.Error())
}

// Detail renders the diagnostics with source context.
func (e *ParseError) Detail() string {
	return FormatDiagnostics(e.Files, e.Diagnostics)
}

// ParseSnippet parses snippet source written in HCL native syntax. Only
// top-level attributes are allowed; blocks are rejected.
func ParseSnippet(source string) (*Program, error) {
	p := hclparse.NewParser()

	file, diags := p.ParseHCL([]byte(source), SnippetFilename)
	if diags.HasErrors() {
		return nil, &ParseError{Diagnostics: diags, Files: p.Files()}
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, &ParseError{Diagnostics: diags, Files: p.Files()}
	}

	return &Program{
		Source:   source,
		Files:    p.Files(),
		Bindings: attrs,
	}, nil
}

// FormatDiagnostics writes diagnostics the way the hcl command line tools do,
// including the offending source lines.
func FormatDiagnostics(files map[string]*hcl.File, diags hcl.Diagnostics) string {
	var buf bytes.Buffer
	WriteDiagnostics(&buf, files, diags)
	return buf.String()
}

// WriteDiagnostics is FormatDiagnostics writing directly to w.
func WriteDiagnostics(w io.Writer, files map[string]*hcl.File, diags hcl.Diagnostics) {
	wr := hcl.NewDiagnosticTextWriter(w, files, 78, false)
	if err := wr.WriteDiagnostics(diags); err != nil {
		fmt.Fprintln(w, diags.Error())
	}
}
