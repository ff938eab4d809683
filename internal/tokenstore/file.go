package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores each key in its own file inside a private directory.
// Writes use temp file + rename for crash safety.
type FileBackend struct {
	dir string
}

// Compile-time check to ensure FileBackend implements Backend
var _ Backend = (*FileBackend)(nil)

// NewFileBackend creates a FileBackend rooted at dir, creating it with 0700
// permissions if it doesn't exist.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &FileBackend{
		dir: dir,
	}, nil
}

func (f *FileBackend) path(key string) (string, error) {
	if key == "" || filepath.Base(key) != key || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid token key %q", key)
	}
	return filepath.Join(f.dir, key), nil
}

// Get returns the stored value after trimming whitespace. Returns ErrNotFound if
// the file doesn't exist or is empty, and an error if it has insecure permissions.
func (f *FileBackend) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := f.path(key)
	if err != nil {
		return "", err
	}

	// Check file permissions before reading
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if info.Mode().Perm() != 0600 {
		return "", fmt.Errorf("insecure permissions on %s: %04o (expected 0600)", path, info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Set atomically saves the value using temp file + rename.
// The final file has 0600 permissions (owner read/write only).
func (f *FileBackend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.path(key)
	if err != nil {
		return err
	}

	// Temp file in the same directory so the rename stays on one filesystem
	tempFile, err := os.CreateTemp(f.dir, "*.tmp")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	defer func() { _ = os.Remove(tempName) }()
	defer func() { _ = tempFile.Close() }()

	if _, err := tempFile.WriteString(strings.TrimSpace(value)); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tempName, path); err != nil {
		return err
	}

	return os.Chmod(path, 0600)
}

// Delete removes the file for key. A missing file is not an error.
func (f *FileBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
