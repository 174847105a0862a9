package coupon

import (
	"context"
	"time"

	"threadkart/internal/model"
	"threadkart/internal/repository"

	"github.com/rs/zerolog"
)

// Validator checks coupon eligibility. Validation is a pure read: it never
// consumes a use. A coupon that validates here can still lose its last use
// slot to a concurrent order; redemption re-checks atomically at write time.
type Validator interface {
	// Validate checks code eligibility for userID and returns the coupon
	// on success. The first failing check determines the error:
	// not-found, inactive/expired, usage-cap-reached, already-used.
	Validate(ctx context.Context, code, userID string) (*model.Coupon, error)
}

// validator implements Validator against the coupon store.
type validator struct {
	repo   repository.CouponRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewValidator creates a new coupon validator.
func NewValidator(repo repository.CouponRepository, logger zerolog.Logger) Validator {
	return &validator{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "coupon-validator").Logger(),
	}
}

// Validate runs the eligibility checks in order.
func (v *validator) Validate(ctx context.Context, code, userID string) (*model.Coupon, error) {
	normalized := model.NormalizeCouponCode(code)

	coupon, err := v.repo.GetByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if coupon == nil {
		v.logger.Debug().Str("code", normalized).Msg("coupon not found")
		return nil, model.ErrCouponNotFound
	}

	if !coupon.IsActive || coupon.IsExpired(v.now()) {
		v.logger.Debug().
			Str("code", normalized).
			Bool("active", coupon.IsActive).
			Time("expires", coupon.ExpirationDate).
			Msg("coupon inactive or expired")
		return nil, model.ErrCouponExpired
	}

	if !coupon.HasUsesLeft() {
		v.logger.Debug().
			Str("code", normalized).
			Int("current_uses", coupon.CurrentUses).
			Msg("coupon usage cap reached")
		return nil, model.ErrCouponUsageCap
	}

	if coupon.UsedByUser(userID) {
		v.logger.Debug().
			Str("code", normalized).
			Str("user_id", userID).
			Msg("coupon already used by user")
		return nil, model.ErrCouponAlreadyUsed
	}

	return coupon, nil
}
