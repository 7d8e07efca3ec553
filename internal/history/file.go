package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apierrors "github.com/diogo/pulsechat/internal/errors"
)

// FileBackend stores each key in its own file under a directory.
type FileBackend struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileBackend creates the directory if needed and returns a backend rooted there
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("file backend requires a directory: %w", apierrors.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{baseDir: dir}, nil
}

// Dir returns the directory holding the key files
func (f *FileBackend) Dir() string {
	return f.baseDir
}

func (f *FileBackend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.baseDir, key+".json"), nil
}

// Get implements Backend.
func (f *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	path, err := f.path(key)
	if err != nil {
		return "", false, apierrors.NewStorageError("get", key, err)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, apierrors.NewStorageError("get", key, err)
	}
	return string(data), true, nil
}

// Set implements Backend. The value is written to a temp file and renamed
// into place so a crash never leaves a half-written snapshot.
func (f *FileBackend) Set(_ context.Context, key, value string) error {
	path, err := f.path(key)
	if err != nil {
		return apierrors.NewStorageError("set", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.baseDir, "."+key+"-*")
	if err != nil {
		return apierrors.NewStorageError("set", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return apierrors.NewStorageError("set", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return apierrors.NewStorageError("set", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return apierrors.NewStorageError("set", key, err)
	}
	return nil
}

// Delete implements Backend.
func (f *FileBackend) Delete(_ context.Context, key string) error {
	path, err := f.path(key)
	if err != nil {
		return apierrors.NewStorageError("delete", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apierrors.NewStorageError("delete", key, err)
	}
	return nil
}

// Close implements Backend.
func (f *FileBackend) Close() error {
	return nil
}
