package repository

import (
	"context"
	"fmt"

	"threadkart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// GetByCode retrieves a coupon by its normalized code, including the users
// who have redeemed it.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	code = model.NormalizeCouponCode(code)

	query := `
		SELECT code, discount_percentage, expiration_date, is_active, max_uses, current_uses, created_at
		FROM coupons
		WHERE code = $1
	`

	var c model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.Code,
		&c.DiscountPercentage,
		&c.ExpirationDate,
		&c.IsActive,
		&c.MaxUses,
		&c.CurrentUses,
		&c.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	usersQuery := `SELECT user_id FROM coupon_redemptions WHERE coupon_code = $1 ORDER BY redeemed_at`

	rows, err := r.pool.Query(ctx, usersQuery, code)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon redemptions")
		return nil, fmt.Errorf("failed to query coupon redemptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan redemption row")
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		c.UsedBy = append(c.UsedBy, userID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating redemption rows")
		return nil, fmt.Errorf("error iterating redemptions: %w", err)
	}

	return &c, nil
}

// GetAll retrieves all coupons, newest first.
func (r *couponRepository) GetAll(ctx context.Context) ([]model.Coupon, error) {
	query := `
		SELECT code, discount_percentage, expiration_date, is_active, max_uses, current_uses, created_at
		FROM coupons
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query coupons")
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		var c model.Coupon
		err := rows.Scan(&c.Code, &c.DiscountPercentage, &c.ExpirationDate, &c.IsActive, &c.MaxUses, &c.CurrentUses, &c.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan coupon row")
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating coupon rows")
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}

// Create inserts a new coupon.
func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_percentage, expiration_date, is_active, max_uses, current_uses, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		coupon.Code,
		coupon.DiscountPercentage,
		coupon.ExpirationDate,
		coupon.IsActive,
		coupon.MaxUses,
		coupon.CurrentUses,
		coupon.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("code", coupon.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	r.logger.Debug().Str("code", coupon.Code).Msg("coupon created")
	return nil
}

// Delete removes a coupon by code.
func (r *couponRepository) Delete(ctx context.Context, code string) (bool, error) {
	code = model.NormalizeCouponCode(code)

	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE code = $1`, code)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to delete coupon")
		return false, fmt.Errorf("failed to delete coupon: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Redeem atomically consumes one use of the coupon for the user. Both writes
// happen in one transaction: the redemption row enforces per-user
// uniqueness and the conditional update enforces the usage cap. Losing
// either race reports redeemed=false without error so the caller's order
// still completes with the already-priced discount.
func (r *couponRepository) Redeem(ctx context.Context, code, userID string) (bool, error) {
	code = model.NormalizeCouponCode(code)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin redemption transaction")
		return false, fmt.Errorf("failed to begin redemption transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO coupon_redemptions (coupon_code, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	insertTag, err := tx.Exec(ctx, insertQuery, code, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to insert redemption")
		return false, fmt.Errorf("failed to insert redemption: %w", err)
	}

	if insertTag.RowsAffected() == 0 {
		// User already redeemed this coupon.
		return false, nil
	}

	updateQuery := `
		UPDATE coupons
		SET current_uses = current_uses + 1
		WHERE code = $1
		  AND (max_uses IS NULL OR current_uses < max_uses)
	`

	updateTag, err := tx.Exec(ctx, updateQuery, code)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to increment coupon usage")
		return false, fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	if updateTag.RowsAffected() == 0 {
		// Cap reached between validation and redemption; roll back the
		// redemption row so the user keeps their unused slot elsewhere.
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to commit redemption")
		return false, fmt.Errorf("failed to commit redemption: %w", err)
	}

	r.logger.Debug().
		Str("code", code).
		Str("user_id", userID).
		Msg("coupon redeemed")

	return true, nil
}
