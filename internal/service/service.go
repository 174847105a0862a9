package service

import (
	"context"

	"threadkart/internal/model"

	"github.com/google/uuid"
)

// CheckoutService owns the checkout-to-order pipeline: session initiation,
// reconciliation of completed payments into orders, and refund handling.
type CheckoutService interface {
	// CreateSession performs the advisory stock check, prices the cart
	// from authoritative product data, applies an optional coupon and
	// creates a hosted payment session. No inventory is reserved.
	CreateSession(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// Reconcile converts a completed payment session into a durable order
	// exactly once. It is safe to call any number of times, concurrently,
	// from either completion channel.
	Reconcile(ctx context.Context, sessionID string) (*model.Order, error)

	// HandleWebhook verifies and dispatches a raw signed webhook payload.
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error

	// Refund flips a paid order to refunded and restores its stock.
	// Duplicate refund events are no-ops.
	Refund(ctx context.Context, sessionRef string) error
}

// OrderService defines read operations over orders.
type OrderService interface {
	// GetByID retrieves an order, enforcing that only its owner or an
	// admin may read it.
	GetByID(ctx context.Context, id uuid.UUID, requesterID string, isAdmin bool) (*model.Order, error)

	// GetHistory retrieves a user's orders, newest first.
	GetHistory(ctx context.Context, userID string) ([]model.Order, error)
}

// ProductService defines operations for catalogue browsing and admin
// product management.
type ProductService interface {
	// GetAll retrieves all products.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByCategory retrieves products in a category.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)

	// GetFeatured retrieves featured products through the cache.
	GetFeatured(ctx context.Context) ([]model.Product, error)

	// GetRecommended retrieves a small random product selection.
	GetRecommended(ctx context.Context) ([]model.Product, error)

	// Create stores a new product and uploads its image.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Delete removes a product and its stored image.
	Delete(ctx context.Context, id uuid.UUID) error

	// ToggleFeatured flips the featured flag and invalidates the cache.
	ToggleFeatured(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// CouponService defines coupon validation and admin management.
type CouponService interface {
	// Validate checks coupon eligibility for a user without consuming a use.
	Validate(ctx context.Context, code, userID string) (*model.Coupon, error)

	// Create stores a new coupon with a normalized code.
	Create(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error)

	// Delete removes a coupon.
	Delete(ctx context.Context, code string) error

	// GetAll lists all coupons.
	GetAll(ctx context.Context) ([]model.Coupon, error)
}

// CartService defines cart management with stock-aware quantity checks.
type CartService interface {
	// Get returns the cart with current product details.
	Get(ctx context.Context, userID string) ([]model.CartLine, error)

	// Add puts one unit of a product into the cart.
	Add(ctx context.Context, userID string, productID uuid.UUID) error

	// SetQuantity updates a cart line; zero removes it.
	SetQuantity(ctx context.Context, userID string, productID uuid.UUID, quantity int) error

	// Remove deletes a cart line.
	Remove(ctx context.Context, userID string, productID uuid.UUID) error

	// Clear empties the cart.
	Clear(ctx context.Context, userID string) error
}
