package storage

import "context"

// ImageStore persists product images and serves back public URLs.
type ImageStore interface {
	// Upload stores the image bytes under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)

	// Delete removes a previously uploaded image.
	Delete(ctx context.Context, key string) error
}
