// Package storage is the blob store behind prescription uploads.
//
// Two drivers are available:
//   - "local"  local filesystem under STORAGE_LOCAL_ROOT (default)
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	// boot once (internal/kernel):
//	if err := storage.Connect(ctx); err != nil { ... }
//
//	disk := storage.Default()
//	err := disk.Put(ctx, "prescriptions/3f2a.pdf", file, "application/pdf")
//	url := disk.URL("prescriptions/3f2a.pdf")
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Open when no object exists at key.
var ErrNotFound = errors.New("storage: object not found")

// Disk is the driver interface. Keys are slash-separated and relative.
type Disk interface {
	// Put writes r to key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Open returns a reader for key. Caller must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for key.
	URL(key string) string
}

// NormalizeKey turns a stored file reference into a disk key. It accepts
// either separator and drops a leading "uploads/" left by older records, so
// `uploads\prescriptions\a.pdf` and `/prescriptions/a.pdf` both become
// `prescriptions/a.pdf`. Returns "" for keys that escape the disk root.
func NormalizeKey(stored string) string {
	k := strings.ReplaceAll(strings.TrimSpace(stored), `\`, "/")
	k = strings.TrimLeft(k, "/")
	k = strings.TrimPrefix(k, "uploads/")
	if k == "" {
		return ""
	}

	clean := path.Clean(k)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return ""
	}
	return clean
}
