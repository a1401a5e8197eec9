package config

import (
	"strings"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	opts, err := New(Options{})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if opts.Expression != "example" {
		t.Errorf("Expected expression 'example', got '%s'", opts.Expression)
	}
	if opts.OutputDir != "images" {
		t.Errorf("Expected output dir 'images', got '%s'", opts.OutputDir)
	}
	if opts.Backend != BackendRaster {
		t.Errorf("Expected raster backend, got '%s'", opts.Backend)
	}
	if opts.Workers != 1 {
		t.Errorf("Expected 1 worker, got %d", opts.Workers)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr []string
	}{
		{
			name: "valid vector options",
			opts: Options{Backend: "Vector", OutputFormat: "latex", Workers: 4},
		},
		{
			name:    "unknown backend",
			opts:    Options{Backend: "cairo"},
			wantErr: []string{"unknown backend"},
		},
		{
			name:    "negative workers",
			opts:    Options{Workers: -2},
			wantErr: []string{"workers must be at least 1"},
		},
		{
			name:    "several problems reported together",
			opts:    Options{Backend: "svg", LogLevel: "loud", LogFormat: "xml", Expression: "a b"},
			wantErr: []string{"unknown backend", "invalid log-level", "invalid log-format", "invalid expression name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("New() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("New() expected error containing %v", tt.wantErr)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err.Error(), want)
				}
			}
		})
	}
}
