package model

import (
	"strings"
	"time"
)

// Coupon represents a percentage discount code. CurrentUses and UsedBy are
// mutated only when an order redeems the coupon; validation never writes.
type Coupon struct {
	Code               string     `json:"code" db:"code"`
	DiscountPercentage int        `json:"discountPercentage" db:"discount_percentage"`
	ExpirationDate     time.Time  `json:"expirationDate" db:"expiration_date"`
	IsActive           bool       `json:"isActive" db:"is_active"`
	MaxUses            *int       `json:"maxUses,omitempty" db:"max_uses"` // nil = unlimited
	CurrentUses        int        `json:"currentUses" db:"current_uses"`
	UsedBy             []string   `json:"usedBy,omitempty"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
}

// NormalizeCouponCode upper-cases and trims a coupon code so lookups are
// case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// HasUsesLeft reports whether the coupon is under its usage cap.
func (c *Coupon) HasUsesLeft() bool {
	return c.MaxUses == nil || c.CurrentUses < *c.MaxUses
}

// IsExpired reports whether the coupon's expiration date has passed.
func (c *Coupon) IsExpired(now time.Time) bool {
	return !c.ExpirationDate.After(now)
}

// UsedByUser reports whether the given user already redeemed the coupon.
func (c *Coupon) UsedByUser(userID string) bool {
	for _, id := range c.UsedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// CouponRequest represents the admin payload for creating a coupon.
type CouponRequest struct {
	Code               string    `json:"code"`
	DiscountPercentage int       `json:"discountPercentage"`
	ExpirationDate     time.Time `json:"expirationDate"`
	MaxUses            *int      `json:"maxUses,omitempty"`
}
