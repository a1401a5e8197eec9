// Package validation provides safety checks for the paths a run reads from
// and writes to. It rejects path traversal and reports unusable locations
// before any diagram is compiled.
package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Validator checks paths on a filesystem.
type Validator struct {
	Fs afero.Fs
}

// New returns a validator for the real filesystem.
func New() Validator {
	return Validator{Fs: afero.NewOsFs()}
}

func (v Validator) fs() afero.Fs {
	if v.Fs == nil {
		return afero.NewOsFs()
	}
	return v.Fs
}

// hasTraversal reports whether any element of p is "..".
func hasTraversal(p string) bool {
	for _, elem := range strings.FieldsFunc(filepath.ToSlash(p), func(r rune) bool { return r == '/' }) {
		if elem == ".." {
			return true
		}
	}
	return false
}

// ValidateOutputDir validates the artifact directory. The directory does
// not need to exist yet, but if it does it must be a directory.
func (v Validator) ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	if hasTraversal(dir) {
		return fmt.Errorf("path traversal detected in output directory: %s", dir)
	}

	info, err := v.fs().Stat(filepath.Clean(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory is not a directory: %s", dir)
	}
	return nil
}

// ValidateOutputPath validates the path of a file about to be written.
// Returns error if path is invalid, contains path traversal attempts, or its
// directory is not writable
func (v Validator) ValidateOutputPath(outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	if hasTraversal(outputPath) {
		return fmt.Errorf("path traversal detected in output path: %s", outputPath)
	}

	dir := filepath.Dir(filepath.Clean(outputPath))

	dirInfo, err := v.fs().Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}
	if !dirInfo.IsDir() {
		return fmt.Errorf("output path parent is not a directory: %s", dir)
	}

	// Check if directory is writable by attempting to create a temp file
	f, err := afero.TempFile(v.fs(), dir, ".diagrams_write_test")
	if err != nil {
		return fmt.Errorf("output directory is not writable: %s: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = v.fs().Remove(name)

	return nil
}

// ValidateInputPath validates an input path (document or directory)
// Returns error if path doesn't exist or is not accessible
func (v Validator) ValidateInputPath(inputPath string, mustBeDir bool) error {
	if inputPath == "" {
		return fmt.Errorf("input path cannot be empty")
	}

	cleanPath := filepath.Clean(inputPath)

	info, err := v.fs().Stat(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("input path does not exist: %s", cleanPath)
		}
		return fmt.Errorf("failed to access input path: %w", err)
	}

	if mustBeDir && !info.IsDir() {
		return fmt.Errorf("input path must be a directory: %s", cleanPath)
	}
	if !mustBeDir && info.IsDir() {
		return fmt.Errorf("input path must be a file: %s", cleanPath)
	}

	return nil
}

// ValidateOutputDir checks dir on the real filesystem.
func ValidateOutputDir(dir string) error {
	return New().ValidateOutputDir(dir)
}

// ValidateOutputPath checks path on the real filesystem.
func ValidateOutputPath(path string) error {
	return New().ValidateOutputPath(path)
}

// ValidateInputPath checks path on the real filesystem.
func ValidateInputPath(path string, mustBeDir bool) error {
	return New().ValidateInputPath(path, mustBeDir)
}
