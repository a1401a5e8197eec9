package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ankek/terraform-provider-diagrams/internal/parser"
)

// Store keeps rendered artifacts in one output directory, named by their
// cache key.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a store rooted at dir on fs.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: filepath.Clean(dir)}
}

// NewOsStore returns a store on the real filesystem.
func NewOsStore(dir string) *Store {
	return NewStore(afero.NewOsFs(), dir)
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Fs returns the filesystem the store writes to.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// EnsureDir creates the output directory and its parents. It is safe to
// call repeatedly and concurrently. Failure is a configuration error since
// no block can be rendered without the directory.
func (s *Store) EnsureDir() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return &parser.ConfigurationError{
			Err: fmt.Errorf("cannot create output directory %s: %w", s.dir, err),
		}
	}
	return nil
}

// Path returns where the artifact for key is stored.
func (s *Store) Path(key Key, ext string) string {
	return filepath.Join(s.dir, key.Hex()+"."+ext)
}

// Exists reports whether a regular file is present at path.
func (s *Store) Exists(path string) bool {
	info, err := s.fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// WriteAtomic writes the output of write to path. The data goes to a
// temporary file in the same directory first and is renamed into place,
// so readers never observe a partial artifact. An existing file at path is
// replaced.
func (s *Store) WriteAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := s.fs.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move artifact into place at %s: %w", path, err)
	}
	return nil
}

// Remove deletes the artifact at path. A missing file is not an error.
func (s *Store) Remove(path string) error {
	err := s.fs.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
