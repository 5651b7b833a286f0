// Package storage abstracts where uploaded image bytes live. Production
// runs against S3-compatible object storage (Cloudflare R2); the disk
// store covers local development and tests.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// DiskStore writes objects under a base directory, one file per key.
type DiskStore struct {
	Dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{Dir: dir}
}

func (d *DiskStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if strings.Contains(key, "..") {
		return fmt.Errorf("invalid object key %q", key)
	}
	path := filepath.Join(d.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("write object %q: %w", key, err)
	}
	return nil
}
