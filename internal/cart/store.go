// Package cart provides the per-user cart store. The reconciliation engine
// depends only on Clear; everything else serves cart management endpoints.
package cart

import (
	"context"

	"threadkart/internal/model"

	"github.com/google/uuid"
)

// Store holds each user's cart contents.
type Store interface {
	// Get returns the user's cart items. An absent cart is an empty slice.
	Get(ctx context.Context, userID string) ([]model.CartItem, error)

	// Add increments the quantity of a product in the cart by one,
	// inserting the line if absent. Returns the new quantity.
	Add(ctx context.Context, userID string, productID uuid.UUID) (int, error)

	// SetQuantity sets the quantity of a product line. Zero removes it.
	SetQuantity(ctx context.Context, userID string, productID uuid.UUID, quantity int) error

	// Remove deletes a product line from the cart.
	Remove(ctx context.Context, userID string, productID uuid.UUID) error

	// Clear empties the user's cart. Invoked once on successful
	// reconciliation; clearing an already-empty cart is a no-op.
	Clear(ctx context.Context, userID string) error
}
