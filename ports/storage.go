package ports

import (
	"context"
	"io"
)

// FileStorage defines the filesystem operations of a build
type FileStorage interface {
	ListDirs(ctx context.Context, dir string) ([]string, error)
	ListFiles(ctx context.Context, dir string) ([]string, error)
	GetReader(ctx context.Context, path string) (io.ReadCloser, error)
	PrepareDir(ctx context.Context, name string) (string, error)
	Create(ctx context.Context, path string) (io.WriteCloser, error)
}
