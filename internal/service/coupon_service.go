package service

import (
	"context"
	"time"

	"threadkart/internal/coupon"
	"threadkart/internal/model"
	"threadkart/internal/repository"

	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	validator  coupon.Validator
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(couponRepo repository.CouponRepository, validator coupon.Validator, logger zerolog.Logger) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		validator:  validator,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// Validate checks coupon eligibility for a user without consuming a use.
func (s *couponService) Validate(ctx context.Context, code, userID string) (*model.Coupon, error) {
	return s.validator.Validate(ctx, code, userID)
}

// Create stores a new coupon with a normalized code.
func (s *couponService) Create(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error) {
	if req == nil || req.Code == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Coupon code is required")
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Discount percentage must be between 0 and 100")
	}
	if req.ExpirationDate.IsZero() {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Expiration date is required")
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Max uses must be at least 1")
	}

	c := &model.Coupon{
		Code:               model.NormalizeCouponCode(req.Code),
		DiscountPercentage: req.DiscountPercentage,
		ExpirationDate:     req.ExpirationDate,
		IsActive:           true,
		MaxUses:            req.MaxUses,
		CreatedAt:          time.Now(),
	}

	if err := s.couponRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("code", c.Code).
		Int("discount", c.DiscountPercentage).
		Msg("coupon created")

	return c, nil
}

// Delete removes a coupon.
func (s *couponService) Delete(ctx context.Context, code string) error {
	normalized := model.NormalizeCouponCode(code)

	deleted, err := s.couponRepo.Delete(ctx, normalized)
	if err != nil {
		return err
	}
	if !deleted {
		return model.ErrCouponNotFound
	}

	s.logger.Info().Str("code", normalized).Msg("coupon deleted")
	return nil
}

// GetAll lists all coupons.
func (s *couponService) GetAll(ctx context.Context) ([]model.Coupon, error) {
	return s.couponRepo.GetAll(ctx)
}
