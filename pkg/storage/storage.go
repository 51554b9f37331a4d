// Package storage resolves product image references against a local
// directory or an S3-compatible bucket.
//
//	storage.Connect(ctx)
//	rc, name, err := storage.Open(ctx, "s3:catalog/shirt-front.jpg")
//
// A reference is "<disk>:<path>" or a bare path on the default disk.
package storage

import (
	"context"
	"io"
	"time"
)

// Disk is the filesystem driver interface.
type Disk interface {
	Put(ctx context.Context, path string, content []byte) error
	PutStream(ctx context.Context, path string, r io.Reader) error

	Get(ctx context.Context, path string) ([]byte, error)
	// GetStream returns a ReadCloser for the file. Caller must close it.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	Exists(ctx context.Context, path string) bool
	Size(ctx context.Context, path string) (int64, error)
	LastModified(ctx context.Context, path string) (time.Time, error)
	URL(path string) string

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// Files lists non-recursive filenames directly inside directory.
	Files(ctx context.Context, directory string) ([]string, error)
}
