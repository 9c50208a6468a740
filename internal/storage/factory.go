package storage

import (
	"fmt"

	"studydesk/internal/config"
)

// NewStorage builds the configured storage backend.
func NewStorage(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		basePath := cfg.LocalPath
		if basePath == "" {
			basePath = "./uploads"
		}
		return NewLocalStorage(basePath)

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3 bucket is required for s3 storage")
		}
		return NewS3Storage(cfg.S3Bucket, cfg.S3Region)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
