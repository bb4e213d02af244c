package storage

import (
	"context"
	"io"
)

type FileStorage interface {
	// Upload stores a file under path and returns the stored path/key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// GetURL returns the public URL of a stored file
	GetURL(ctx context.Context, path string) (string, error)
}
