package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"mulligan/core/storage"

	"github.com/minio/minio-go/v7"
)

// Backend stores image objects addressed by a slash separated relative path.
type Backend interface {
	// Exists reports whether an object is present at relPath.
	Exists(ctx context.Context, relPath string) (bool, error)
	// Put stores data at relPath, replacing any previous object.
	Put(ctx context.Context, relPath string, data []byte) error
}

// FSBackend keeps images below a root directory.
type FSBackend struct {
	root string
}

// NewFSBackend creates a filesystem backend rooted at root.
func NewFSBackend(root string) *FSBackend {
	return &FSBackend{root: root}
}

func (b *FSBackend) resolve(relPath string) (string, error) {
	local := filepath.FromSlash(relPath)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("asset path %q escapes the asset root", relPath)
	}
	return filepath.Join(b.root, local), nil
}

// Exists reports whether a regular file is present at relPath.
func (b *FSBackend) Exists(_ context.Context, relPath string) (bool, error) {
	full, err := b.resolve(relPath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Put writes data to a temporary file next to the target and renames it into place,
// so readers never observe a partial image.
func (b *FSBackend) Put(_ context.Context, relPath string, data []byte) error {
	full, err := b.resolve(relPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close asset: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod asset: %w", err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return fmt.Errorf("failed to move asset into place: %w", err)
	}
	return nil
}

// S3Backend keeps images in an object storage bucket under a key prefix.
type S3Backend struct {
	client storage.Client
	bucket string
	prefix string
}

// NewS3Backend creates a bucket backend. Keys are "{prefix}/{relPath}".
func NewS3Backend(client storage.Client, bucket, prefix string) *S3Backend {
	return &S3Backend{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key for relPath.
func (b *S3Backend) Key(relPath string) string {
	if b.prefix == "" {
		return relPath
	}
	return path.Join(b.prefix, relPath)
}

// Exists checks the bucket for an object with exactly the key of relPath.
func (b *S3Backend) Exists(ctx context.Context, relPath string) (bool, error) {
	return storage.ObjectExists(ctx, b.client, b.bucket, b.Key(relPath))
}

// Put uploads data as a PNG object.
func (b *S3Backend) Put(ctx context.Context, relPath string, data []byte) error {
	_, err := b.client.PutObject(ctx, b.bucket, b.Key(relPath), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/png",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", b.Key(relPath), err)
	}
	return nil
}
