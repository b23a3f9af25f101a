package ports

import (
	"context"
	"io"
)

type Meta struct {
	Source      string
	ContentType string
	Size        int64
	Bucket      string
	Key         string
}

// FileOpener re-reads a stored upload. Implementations resolve bare paths to
// local disk and s3:// URLs to object storage.
type FileOpener interface {
	Open(ctx context.Context, filePath string) (io.ReadCloser, Meta, error)
}
