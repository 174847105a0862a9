package repository

import (
	"context"
	"fmt"

	"threadkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = "id, name, description, price, image_url, image_key, category, stock, is_featured, created_at"

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.ImageKey,
		&p.Category,
		&p.Stock,
		&p.IsFeatured,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetAll retrieves all products, newest first.
func (r *productRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY created_at DESC`, productColumns)
	return r.queryProducts(ctx, query)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ANY($1) ORDER BY name`, productColumns)
	return r.queryProducts(ctx, query, ids)
}

// GetByCategory retrieves all products in a category, newest first.
func (r *productRepository) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE category = $1 ORDER BY created_at DESC`, productColumns)
	return r.queryProducts(ctx, query, category)
}

// GetFeatured retrieves all featured products, newest first.
func (r *productRepository) GetFeatured(ctx context.Context) ([]model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE is_featured ORDER BY created_at DESC`, productColumns)
	return r.queryProducts(ctx, query)
}

// GetRandom retrieves up to limit randomly-ordered products.
func (r *productRepository) GetRandom(ctx context.Context, limit int) ([]model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY RANDOM() LIMIT $1`, productColumns)
	return r.queryProducts(ctx, query, limit)
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, image_url, image_key, category, stock, is_featured, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.ImageURL,
		product.ImageKey,
		product.Category,
		product.Stock,
		product.IsFeatured,
		product.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", product.ID.String()).Msg("product created")
	return nil
}

// Delete removes a product by ID and returns the deleted row.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf(`DELETE FROM products WHERE id = $1 RETURNING %s`, productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found for delete")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	r.logger.Debug().Str("product_id", id.String()).Msg("product deleted")
	return p, nil
}

// SetFeatured flips the featured flag and returns the updated product.
func (r *productRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*model.Product, error) {
	query := fmt.Sprintf(`UPDATE products SET is_featured = $2 WHERE id = $1 RETURNING %s`, productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id, featured))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update featured flag")
		return nil, fmt.Errorf("failed to update featured flag: %w", err)
	}

	return p, nil
}

// AdjustStock atomically adds delta to the product's stock. The update is a
// single statement so concurrent adjustments never lose writes.
func (r *productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	query := `UPDATE products SET stock = stock + $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, delta)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id.String()).
			Int("delta", delta).
			Msg("failed to adjust stock")
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("product_id", id.String()).Msg("stock adjustment matched no product")
		return model.ErrProductNotFound
	}

	r.logger.Debug().
		Str("product_id", id.String()).
		Int("delta", delta).
		Msg("stock adjusted")

	return nil
}
