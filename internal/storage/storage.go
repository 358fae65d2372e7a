// Package storage holds the blob stores recipe images are uploaded to.
package storage

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/config"
)

// BlobStore persists an object and returns a URL it can be fetched from.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver. An empty driver disables
// uploads and returns nil.
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case config.BlobDriverNone:
		return nil, nil
	case config.BlobDriverS3:
		s3Cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure s3: %w", err)
		}
		return NewS3Store(s3Cfg), nil
	case config.BlobDriverMinIO:
		return NewMinIOStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", cfg.Driver)
	}
}
