package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalArchiver implements Archiver by copying files into a flat archive
// directory. It is the default when S3 is not configured.
type LocalArchiver struct {
	dir string
}

// NewLocalArchiver creates a LocalArchiver rooted at dir.
// If dir is empty, an "archive" directory under the working directory is used.
// The directory is created if it doesn't exist.
func NewLocalArchiver(dir string) (*LocalArchiver, error) {
	if dir == "" {
		dir = "archive"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	return &LocalArchiver{dir: dir}, nil
}

// Dir returns the archive directory path.
func (a *LocalArchiver) Dir() string {
	return a.dir
}

// Archive copies the file into the archive directory under key and returns
// the destination path. Key path separators are flattened so the archive
// stays a single directory.
func (a *LocalArchiver) Archive(ctx context.Context, key, path string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	src, err := os.Open(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return "", fmt.Errorf("open source file: %w", err)
	}
	defer func() { _ = src.Close() }()

	dest := filepath.Join(a.dir, flattenKey(key))
	dst, err := os.Create(dest) // #nosec G304 - dest is under the archive dir
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("copy to archive: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("close archive file: %w", err)
	}

	return dest, nil
}

func flattenKey(key string) string {
	out := make([]rune, 0, len(key))
	for _, r := range key {
		if r == '/' || r == filepath.Separator {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}
