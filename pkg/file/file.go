package file

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// File holds metadata about a stored object.
type File struct {
	Path        string
	Size        int64
	ContentType string
	URL         string
}

// Storage is the blob storage interface consumed by the product module.
type Storage interface {
	// Save stores the contents of r at path and returns the stored file metadata.
	Save(ctx context.Context, r io.Reader, path, contentType string) (*File, error)
	// Delete removes a single object. Deleting an absent object is a no-op.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL for a stored object.
	URL(path string) string
}

// imageContentTypes lists the MIME types accepted for product images.
var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAllowedImageType reports whether the content type is an accepted image type.
func IsAllowedImageType(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return imageContentTypes[strings.ToLower(contentType)]
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename strips directory components and characters that are unsafe
// in object keys or filesystem paths.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// cleanPath normalizes a storage path and rejects traversal attempts.
func cleanPath(path string) (string, error) {
	cleaned := filepath.ToSlash(filepath.Clean("/" + path))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.Contains(cleaned, "..") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}
