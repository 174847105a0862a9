package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"threadkart/internal/cache"
	"threadkart/internal/model"
	"threadkart/internal/repository"
	"threadkart/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const recommendedCount = 4

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	featured    cache.FeaturedCache
	images      storage.ImageStore
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	featured cache.FeaturedCache,
	images storage.ImageStore,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		featured:    featured,
		images:      images,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves all products.
func (s *productService) GetAll(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.GetAll(ctx)
}

// GetByID retrieves a single product.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// GetByCategory retrieves products in a category.
func (s *productService) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return s.productRepo.GetByCategory(ctx, category)
}

// GetFeatured retrieves featured products, reading through the cache. Cache
// failures degrade to a database read rather than failing the request.
func (s *productService) GetFeatured(ctx context.Context) ([]model.Product, error) {
	products, err := s.featured.Get(ctx)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn().Err(err).Msg("featured cache read failed, falling back to database")
	}

	products, err = s.productRepo.GetFeatured(ctx)
	if err != nil {
		return nil, err
	}

	if len(products) > 0 {
		if err := s.featured.Set(ctx, products); err != nil {
			s.logger.Warn().Err(err).Msg("failed to populate featured cache")
		}
	}

	return products, nil
}

// GetRecommended retrieves a small random product selection.
func (s *productService) GetRecommended(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.GetRandom(ctx, recommendedCount)
}

// Create stores a new product and uploads its image.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	id := uuid.New()

	imageURL := ""
	imageKey := ""
	if req.Image != "" {
		data, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			return nil, model.NewDomainError(model.ErrCodeInvalidJSON, "Product image must be base64 encoded")
		}

		imageKey = id.String()
		imageURL, err = s.images.Upload(ctx, imageKey, "image/jpeg", data)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", id.String()).Msg("image upload failed")
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}
	}

	product := &model.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    imageURL,
		ImageKey:    imageKey,
		Category:    req.Category,
		Stock:       req.Stock,
		CreatedAt:   time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("name", product.Name).
		Msg("product created")

	return product, nil
}

// Delete removes a product, its stored image and any stale featured cache.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	if product.ImageKey != "" {
		if err := s.images.Delete(ctx, product.ImageKey); err != nil {
			s.logger.Warn().
				Err(err).
				Str("product_id", id.String()).
				Msg("failed to delete product image")
		}
	}

	if product.IsFeatured {
		if err := s.featured.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate featured cache")
		}
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

// ToggleFeatured flips the featured flag and invalidates the cache so the
// next featured read repopulates it.
func (s *productService) ToggleFeatured(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	updated, err := s.productRepo.SetFeatured(ctx, id, !product.IsFeatured)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, model.ErrProductNotFound
	}

	if err := s.featured.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate featured cache")
	}

	return updated, nil
}

func validateProductRequest(req *model.ProductRequest) error {
	if req == nil {
		return fmt.Errorf("product request is nil")
	}
	if req.Name == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Product name is required")
	}
	if req.Category == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Product category is required")
	}
	if req.Price < 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "Product price cannot be negative")
	}
	if req.Stock < 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "Product stock cannot be negative")
	}
	return nil
}
