package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage on the local filesystem. All operations are
// confined to baseDir to prevent path traversal.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage creates a filesystem-backed storage rooted at baseDir.
// The directory is created if it does not exist.
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	if err := os.MkdirAll(absBaseDir, 0o755); err != nil {
		return nil, errors.Join(ErrFailedToWriteFile, err)
	}

	return &LocalStorage{
		baseDir: absBaseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes the contents of r below the storage root.
func (s *LocalStorage) Save(ctx context.Context, r io.Reader, path, contentType string) (*File, error) {
	key, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	absPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, errors.Join(ErrFailedToWriteFile, err)
	}

	f, err := os.Create(absPath)
	if err != nil {
		return nil, errors.Join(ErrFailedToWriteFile, err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(absPath)
		return nil, errors.Join(ErrFailedToWriteFile, err)
	}

	return &File{
		Path:        key,
		Size:        n,
		ContentType: contentType,
		URL:         s.URL(key),
	}, nil
}

// Delete removes a file. Deleting an absent file is a no-op.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	key, err := cleanPath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return errors.Join(ErrFailedToDeleteFile, err)
	}
	return nil
}

// URL returns the public URL for a stored file.
func (s *LocalStorage) URL(path string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path, "/")
}
