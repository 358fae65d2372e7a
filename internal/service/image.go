package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/internal/storage"
)

const maxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// StoredImage is an uploaded recipe image.
type StoredImage struct {
	URL string
	Key string
}

// ImageService decodes base64 data URIs and uploads them to the blob store.
type ImageService struct {
	store storage.BlobStore
}

// NewImageService accepts a nil store, in which case uploads are rejected.
func NewImageService(store storage.BlobStore) *ImageService {
	return &ImageService{store: store}
}

// Save uploads a "data:image/<type>;base64,<payload>" string. An empty
// payload returns nil, nil.
func (s *ImageService) Save(ctx context.Context, dataURI string) (*StoredImage, error) {
	if dataURI == "" {
		return nil, nil
	}
	if s.store == nil {
		return nil, newValidationError(CodeInvalidImage, "image", "image uploads are not configured")
	}

	data, contentType, err := decodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("recipes/images/%s.%s", uuid.NewString(), imageExtensions[contentType])
	url, err := s.store.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	return &StoredImage{URL: url, Key: key}, nil
}

// Discard removes an image whose recipe write failed.
func (s *ImageService) Discard(ctx context.Context, img *StoredImage) {
	if img == nil || s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, img.Key); err != nil {
		log.Warn().Err(err).Str("component", "image").Str("key", img.Key).Msg("Failed to discard orphaned image")
	}
}

func decodeDataURI(dataURI string) ([]byte, string, error) {
	invalid := func(msg string) error {
		return newValidationError(CodeInvalidImage, "image", msg)
	}

	meta, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, "", invalid("image must be a base64 data URI")
	}

	if len(payload) > base64.StdEncoding.EncodedLen(maxImageBytes) {
		return nil, "", invalid("image exceeds 5 MB")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", invalid("image is not valid base64")
	}
	if len(data) == 0 {
		return nil, "", invalid("image is empty")
	}
	if len(data) > maxImageBytes {
		return nil, "", invalid("image exceeds 5 MB")
	}

	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, "", invalid(fmt.Sprintf("unsupported image type %s", contentType))
	}
	return data, contentType, nil
}
