package cache

import (
	"context"
	"errors"

	"threadkart/internal/model"
)

// ErrCacheMiss is returned when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// FeaturedCache is a read-through cache for the featured-products listing.
// It is peripheral to the storefront and shares no infrastructure with the
// reconciliation pipeline.
type FeaturedCache interface {
	Get(ctx context.Context) ([]model.Product, error)
	Set(ctx context.Context, products []model.Product) error
	Invalidate(ctx context.Context) error
}
