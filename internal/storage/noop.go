package storage

import (
	"context"

	"github.com/rs/zerolog"
)

type noopStore struct {
	logger zerolog.Logger
}

// NewNoopStore returns an ImageStore that discards uploads. It is used
// when S3 is disabled; products are created without hosted images.
func NewNoopStore(logger zerolog.Logger) ImageStore {
	return &noopStore{logger: logger.With().Str("component", "noop_image_store").Logger()}
}

func (s *noopStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	s.logger.Debug().Str("key", key).Msg("image upload skipped, storage disabled")
	return "", nil
}

func (s *noopStore) Delete(ctx context.Context, key string) error {
	return nil
}
