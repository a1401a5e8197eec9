package renderer

import (
	"context"
	"io"

	"github.com/ankek/terraform-provider-diagrams/internal/cache"
)

// writeArtifact encodes an artifact into the store at path. The file only
// appears once encoding has finished.
func writeArtifact(ctx context.Context, store *cache.Store, path string, encode func(w io.Writer) error) error {
	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := store.WriteAtomic(path, encode); err != nil {
		return &RenderError{Path: path, Err: err}
	}
	return nil
}
