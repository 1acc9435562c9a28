// Package local provides a local file system implementation of the storage
// adapter, for development and tests.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	storage "github.com/tigerroll/lineup/pkg/orchestration/adapter/storage"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const ProviderType = "local"

// LocalAdapter maps buckets and object names onto directories under a base
// directory.
type LocalAdapter struct {
	baseDir string
}

var _ storage.StorageAdapter = (*LocalAdapter)(nil)

// NewLocalAdapter creates the adapter, creating baseDir if missing.
func NewLocalAdapter(baseDir string) (*LocalAdapter, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage adapter: baseDir must be specified")
	}
	info, err := os.Stat(baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("local storage adapter: failed to stat baseDir '%s': %w", baseDir, err)
		}
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return nil, fmt.Errorf("local storage adapter: failed to create baseDir '%s': %w", baseDir, err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("local storage adapter: baseDir '%s' is not a directory", baseDir)
	}
	return &LocalAdapter{baseDir: baseDir}, nil
}

func (a *LocalAdapter) objectPath(bucket, objectName string) string {
	return filepath.Join(a.baseDir, bucket, filepath.FromSlash(objectName))
}

func (a *LocalAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	path := a.objectPath(bucket, objectName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	logger.Debugf("Local storage: wrote %s", path)
	return nil
}

func (a *LocalAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	f, err := os.Open(a.objectPath(bucket, objectName))
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s/%s': %w", bucket, objectName, err)
	}
	return f, nil
}

func (a *LocalAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	root := filepath.Join(a.baseDir, bucket)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		objectName := filepath.ToSlash(rel)
		if !strings.HasPrefix(objectName, prefix) {
			return nil
		}
		return fn(objectName)
	})
}

func (a *LocalAdapter) Type() string { return ProviderType }

func (a *LocalAdapter) Close() error { return nil }
