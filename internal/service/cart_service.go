package service

import (
	"context"

	"threadkart/internal/cart"
	"threadkart/internal/model"
	"threadkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService. Quantity changes are checked against
// current stock, but nothing is reserved; the checks are advisory just like
// the one at checkout initiation.
type cartService struct {
	store       cart.Store
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store cart.Store, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		store:       store,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the cart with current product details. Lines whose product
// has been deleted are dropped from the response.
func (s *cartService) Get(ctx context.Context, userID string) ([]model.CartLine, error) {
	items, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return []model.CartLine{}, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]model.CartLine, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, model.CartLine{Product: p, Quantity: item.Quantity})
	}

	return lines, nil
}

// Add puts one unit of a product into the cart after an advisory stock check.
func (s *cartService) Add(ctx context.Context, userID string, productID uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	items, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}

	current := 0
	for _, item := range items {
		if item.ProductID == productID {
			current = item.Quantity
			break
		}
	}

	if current+1 > product.Stock {
		s.logger.Debug().
			Str("product_id", productID.String()).
			Int("stock", product.Stock).
			Msg("cart add exceeds available stock")
		return model.ErrInsufficientStock
	}

	_, err = s.store.Add(ctx, userID, productID)
	return err
}

// SetQuantity updates a cart line; zero removes it.
func (s *cartService) SetQuantity(ctx context.Context, userID string, productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return model.ErrInvalidQuantity
	}

	if quantity == 0 {
		return s.store.Remove(ctx, userID, productID)
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	if quantity > product.Stock {
		return model.ErrInsufficientStock
	}

	return s.store.SetQuantity(ctx, userID, productID, quantity)
}

// Remove deletes a cart line.
func (s *cartService) Remove(ctx context.Context, userID string, productID uuid.UUID) error {
	return s.store.Remove(ctx, userID, productID)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}
