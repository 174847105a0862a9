package repository

import (
	"context"
	"errors"

	"threadkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products, newest first.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// GetByCategory retrieves all products in a category, newest first.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)

	// GetFeatured retrieves all featured products, newest first.
	GetFeatured(ctx context.Context) ([]model.Product, error)

	// GetRandom retrieves up to limit randomly-ordered products.
	GetRandom(ctx context.Context, limit int) ([]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Delete removes a product by ID. Returns the deleted product so the
	// caller can clean up its stored image, or nil when absent.
	Delete(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// SetFeatured flips the featured flag and returns the updated product.
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*model.Product, error)

	// AdjustStock atomically adds delta to the product's stock. Negative
	// deltas decrement; the resulting stock may go below zero (overselling
	// is tolerated rather than blocking a completed payment).
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// Inserting a duplicate external session ID fails with a unique
	// violation; callers detect it with IsUniqueViolation.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByExternalSessionID retrieves the order created for a payment
	// session, or nil when no order exists yet.
	GetByExternalSessionID(ctx context.Context, sessionID string) (*model.Order, error)

	// GetByUser retrieves all orders for a user, newest first.
	GetByUser(ctx context.Context, userID string) ([]model.Order, error)

	// TransitionPaymentStatus moves an order's payment status from one
	// value to another. Reports false when the order was not in the
	// expected state, which makes refund handling idempotent under
	// duplicate events.
	TransitionPaymentStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its normalized code, including the
	// set of users who have redeemed it. Returns nil when absent.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// GetAll retrieves all coupons, newest first.
	GetAll(ctx context.Context) ([]model.Coupon, error)

	// Create inserts a new coupon.
	Create(ctx context.Context, coupon *model.Coupon) error

	// Delete removes a coupon by code. Reports whether a row was deleted.
	Delete(ctx context.Context, code string) (bool, error)

	// Redeem atomically consumes one use of the coupon for the user:
	// the usage counter is incremented only while still under the cap and
	// only if this user has not redeemed before. Reports redeemed=false
	// (without error) when the redemption lost a race on either condition.
	Redeem(ctx context.Context, code, userID string) (bool, error)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation. The unique index on orders.external_session_id is the final
// arbiter of the create race during reconciliation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
