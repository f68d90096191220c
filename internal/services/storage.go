package services

import (
	"context"
	"io"
	"time"

	appconfig "southcoast-promotion/internal/config"
)

// StorageService defines the interface for creative file storage
type StorageService interface {
	// Upload uploads a file to storage and returns the public URL
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a file
	GetURL(key string) string

	// GeneratePresignedURL generates a presigned URL for direct upload
	GeneratePresignedURL(ctx context.Context, key string, contentType string, expiration time.Duration) (string, error)

	// Exists checks if a file exists in storage
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageFactoryConfig selects between object storage and the local
// filesystem fallback.
type StorageFactoryConfig struct {
	Storage      appconfig.StorageConfig
	LocalPath    string
	LocalBaseURL string
}
