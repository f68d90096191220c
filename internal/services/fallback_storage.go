package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorageService stores creative files on the local filesystem.
// Used in development and as a fallback when object storage is not
// configured.
type LocalStorageService struct {
	basePath string
	baseURL  string
}

// NewLocalStorageService creates a filesystem-backed storage service
func NewLocalStorageService(basePath, baseURL string) (*LocalStorageService, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalStorageService{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload saves a file to local storage
func (l *LocalStorageService) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	key = strings.TrimPrefix(key, "/")

	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	if written != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", size, written)
	}

	return l.GetURL(key), nil
}

// Delete removes a file from local storage
func (l *LocalStorageService) Delete(ctx context.Context, key string) error {
	key = strings.TrimPrefix(key, "/")
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	l.cleanupEmptyDirs(filepath.Dir(fullPath))
	return nil
}

// GetURL returns the public URL for a file
func (l *LocalStorageService) GetURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	return fmt.Sprintf("%s/%s", l.baseURL, key)
}

// GeneratePresignedURL is not supported for local storage
func (l *LocalStorageService) GeneratePresignedURL(ctx context.Context, key string, contentType string, expiration time.Duration) (string, error) {
	return "", fmt.Errorf("presigned URLs not supported by local storage")
}

// Exists checks if a file exists in local storage
func (l *LocalStorageService) Exists(ctx context.Context, key string) (bool, error) {
	key = strings.TrimPrefix(key, "/")

	_, err := os.Stat(filepath.Join(l.basePath, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}
	return true, nil
}

// cleanupEmptyDirs removes empty directories up to the base path
func (l *LocalStorageService) cleanupEmptyDirs(dir string) {
	if dir == l.basePath || dir == "." || dir == "/" {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}

	if err := os.Remove(dir); err == nil {
		l.cleanupEmptyDirs(filepath.Dir(dir))
	}
}

// NewStorageService selects object storage when credentials are
// configured and local storage otherwise.
func NewStorageService(cfg StorageFactoryConfig, logger *slog.Logger) (StorageService, error) {
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		svc, err := NewS3Service(cfg.Storage)
		if err == nil {
			logger.Info("using object storage", "bucket", cfg.Storage.BucketName)
			return svc, nil
		}
		logger.Warn("object storage unavailable, falling back to local storage", "error", err)
	}

	svc, err := NewLocalStorageService(cfg.LocalPath, cfg.LocalBaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("using local storage", "path", cfg.LocalPath)
	return svc, nil
}
