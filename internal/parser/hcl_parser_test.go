package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSnippet(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantNames []string
		wantErr   bool
	}{
		{
			name: "bindings",
			source: `
r       = 40
example = circle(r)
`,
			wantNames: []string{"example", "r"},
		},
		{
			name:      "empty source",
			source:    "",
			wantNames: []string{},
		},
		{
			name: "missing closing bracket",
			source: `
example = [circle(1), square(2)
`,
			wantErr: true,
		},
		{
			name: "blocks are not allowed",
			source: `
shape "a" {
  radius = 1
}
`,
			wantErr: true,
		},
		{
			name: "duplicate binding",
			source: `
a = 1
a = 2
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := ParseSnippet(tt.source)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseSnippet() expected error")
				}
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected *ParseError, got %T", err)
				}
				if !strings.Contains(parseErr.Detail(), SnippetFilename) {
					t.Errorf("Detail() should reference %s, got:\n%s", SnippetFilename, parseErr.Detail())
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSnippet() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantNames, prog.Names()); diff != "" {
				t.Errorf("Names() mismatch (-want +got):\n%s", diff)
			}
			if prog.Source != tt.source {
				t.Error("Program.Source should keep the exact source text")
			}
		})
	}
}
