package cache

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ankek/terraform-provider-diagrams/internal/parser"
)

var defaultDims = parser.Dimensions{Width: parser.DefaultWidth, Height: parser.DefaultHeight}

func TestDeriveKeyDeterministic(t *testing.T) {
	imports := []string{"circle", "prelude/1"}
	a := DeriveKey("example = circle(1)", "example", imports, defaultDims, "raster/1")
	b := DeriveKey("example = circle(1)", "example", imports, defaultDims, "raster/1")

	if a != b {
		t.Errorf("Expected identical keys, got %s and %s", a, b)
	}
	if len(a.Hex()) != 64 {
		t.Errorf("Expected a 64 character hex digest, got %q", a.Hex())
	}
	if !strings.HasPrefix(a.String(), "sha256:") {
		t.Errorf("Expected sha256 digest, got %s", a)
	}
	if err := a.Digest().Validate(); err != nil {
		t.Errorf("Digest().Validate() = %v", err)
	}
}

func TestDeriveKeySensitivity(t *testing.T) {
	base := func() (string, string, []string, parser.Dimensions, string) {
		return "example = circle(1)", "example", []string{"circle", "prelude/1"}, defaultDims, "raster/1"
	}
	reference := DeriveKey(base())

	tests := []struct {
		name string
		key  Key
	}{
		{
			name: "source",
			key:  DeriveKey("example = circle(2)", "example", []string{"circle", "prelude/1"}, defaultDims, "raster/1"),
		},
		{
			name: "whitespace in source",
			key:  DeriveKey("example = circle(1) ", "example", []string{"circle", "prelude/1"}, defaultDims, "raster/1"),
		},
		{
			name: "expression",
			key:  DeriveKey("example = circle(1)", "diagram", []string{"circle", "prelude/1"}, defaultDims, "raster/1"),
		},
		{
			name: "imports",
			key:  DeriveKey("example = circle(1)", "example", []string{"circle", "prelude/2"}, defaultDims, "raster/1"),
		},
		{
			name: "width",
			key:  DeriveKey("example = circle(1)", "example", []string{"circle", "prelude/1"}, parser.Dimensions{Width: 300, Height: 200}, "raster/1"),
		},
		{
			name: "height",
			key:  DeriveKey("example = circle(1)", "example", []string{"circle", "prelude/1"}, parser.Dimensions{Width: 500, Height: 201}, "raster/1"),
		},
		{
			name: "backend",
			key:  DeriveKey("example = circle(1)", "example", []string{"circle", "prelude/1"}, defaultDims, "vector/1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key == reference {
				t.Errorf("changing %s did not change the key", tt.name)
			}
		})
	}
}

func TestDeriveKeyFieldBoundaries(t *testing.T) {
	a := DeriveKey("ab", "c", nil, defaultDims, "raster/1")
	b := DeriveKey("a", "bc", nil, defaultDims, "raster/1")
	if a == b {
		t.Error("keys collide when bytes move between source and expression")
	}

	c := DeriveKey("", "", []string{"ab", "c"}, defaultDims, "raster/1")
	d := DeriveKey("", "", []string{"a", "bc"}, defaultDims, "raster/1")
	if c == d {
		t.Error("keys collide when bytes move between imports")
	}
}

func TestStoreEnsureDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "out/images/nested")

	for i := 0; i < 2; i++ {
		if err := s.EnsureDir(); err != nil {
			t.Fatalf("EnsureDir() call %d unexpected error: %v", i+1, err)
		}
	}
	ok, err := afero.DirExists(fs, "out/images/nested")
	if err != nil || !ok {
		t.Errorf("Expected directory to exist, got exists=%v err=%v", ok, err)
	}
}

func TestStoreEnsureDirFailure(t *testing.T) {
	s := NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "images")

	err := s.EnsureDir()
	var cfgErr *parser.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *parser.ConfigurationError, got %v", err)
	}
}

func TestStorePath(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "images/")
	key := DeriveKey("example = circle(1)", "example", nil, defaultDims, "raster/1")

	got := s.Path(key, "png")
	want := filepath.Join("images", key.Hex()+".png")
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestStoreWriteAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "images")
	path := filepath.Join("images", "sub", "a.png")

	if s.Exists(path) {
		t.Fatal("Exists() true before writing")
	}

	for _, content := range []string{"first", "second"} {
		err := s.WriteAtomic(path, func(w io.Writer) error {
			_, err := io.WriteString(w, content)
			return err
		})
		if err != nil {
			t.Fatalf("WriteAtomic() unexpected error: %v", err)
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			t.Fatalf("ReadFile() unexpected error: %v", err)
		}
		if string(data) != content {
			t.Errorf("content = %q, want %q", data, content)
		}
	}

	if !s.Exists(path) {
		t.Error("Exists() false after writing")
	}
	if s.Exists(filepath.Join("images", "sub")) {
		t.Error("Exists() should be false for directories")
	}
	assertNoTempFiles(t, fs, filepath.Join("images", "sub"))
}

func TestStoreWriteAtomicFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "images")
	path := filepath.Join("images", "a.png")
	boom := errors.New("encoder failed")

	err := s.WriteAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected encoder error, got %v", err)
	}
	if s.Exists(path) {
		t.Error("a failed write must not leave an artifact behind")
	}
	assertNoTempFiles(t, fs, "images")
}

func TestStoreRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "images")
	path := filepath.Join("images", "a.png")

	if err := afero.WriteFile(fs, path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(path); err != nil {
		t.Fatalf("Remove() unexpected error: %v", err)
	}
	if s.Exists(path) {
		t.Error("file still present after Remove()")
	}
	if err := s.Remove(path); err != nil {
		t.Errorf("Remove() of a missing file should succeed, got %v", err)
	}
}

func assertNoTempFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("ReadDir(%s) unexpected error: %v", dir, err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}
