package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StorageConfig holds configuration for local file access
type StorageConfig struct {
	BasePath    string // root of the output tree
	MaxFileSize int64  // inputs larger than this are refused; 0 disables the check
}

// DefaultStorageConfig returns the original job's output root
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		BasePath:    "./preprocessed_data",
		MaxFileSize: 512 * 1024 * 1024, // 512MB
	}
}

// LocalFileStorage implements ports.FileStorage using the local filesystem
type LocalFileStorage struct {
	config *StorageConfig
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(config *StorageConfig) *LocalFileStorage {
	if config == nil {
		config = DefaultStorageConfig()
	}
	return &LocalFileStorage{config: config}
}

// NewLocalFileStorageWithPath creates a new local file storage with a simple path
func NewLocalFileStorageWithPath(basePath string) *LocalFileStorage {
	config := DefaultStorageConfig()
	config.BasePath = basePath
	return NewLocalFileStorage(config)
}

// ListDirs returns the sub-directories of dir in lexical order. Hidden entries
// are skipped.
func (s *LocalFileStorage) ListDirs(ctx context.Context, dir string) ([]string, error) {
	return s.list(ctx, dir, true)
}

// ListFiles returns the regular files of dir in lexical order. Hidden entries
// are skipped.
func (s *LocalFileStorage) ListFiles(ctx context.Context, dir string) ([]string, error) {
	return s.list(ctx, dir, false)
}

func (s *LocalFileStorage) list(ctx context.Context, dir string, dirs bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || e.IsDir() != dirs {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// GetReader returns a reader for the file
func (s *LocalFileStorage) GetReader(ctx context.Context, filePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.config.MaxFileSize > 0 {
		size, err := s.GetFileSize(filePath)
		if err != nil {
			return nil, err
		}
		if size > s.config.MaxFileSize {
			return nil, fmt.Errorf("file %s is %d bytes, limit is %d", filePath, size, s.config.MaxFileSize)
		}
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// PrepareDir creates name under the base path and returns its path.
func (s *LocalFileStorage) PrepareDir(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(s.config.BasePath, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// Create opens filePath for writing, truncating an existing file.
func (s *LocalFileStorage) Create(ctx context.Context, filePath string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	return f, nil
}

// Exists checks if a file exists in storage
func (s *LocalFileStorage) Exists(ctx context.Context, filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// GetFileSize returns the size of a file
func (s *LocalFileStorage) GetFileSize(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get file info: %w", err)
	}
	return info.Size(), nil
}
