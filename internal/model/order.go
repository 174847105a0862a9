package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment status values. An order is created only once a completed payment
// has been observed; paid -> refunded is the only post-creation transition.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Order status values, driven by fulfillment independently of payment.
const (
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCanceled   = "canceled"
)

// Order represents a customer order backed by a completed payment session.
// ExternalSessionID is unique across orders; it is the idempotency key that
// guarantees at most one order per payment session.
type Order struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	UserID            string       `json:"userId" db:"user_id"`
	Items             []OrderItem  `json:"items"`
	TotalAmount       float64      `json:"totalAmount" db:"total_amount"`
	ExternalSessionID *string      `json:"externalSessionId,omitempty" db:"external_session_id"`
	PaymentStatus     string       `json:"paymentStatus" db:"payment_status"`
	OrderStatus       string       `json:"orderStatus" db:"order_status"`
	CouponUsed        *CouponUsage `json:"couponUsed,omitempty"`
	CreatedAt         time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time    `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item with the price locked at purchase time.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
}

// CouponUsage records the coupon applied to an order at checkout.
type CouponUsage struct {
	Code               string `json:"code" db:"coupon_code"`
	DiscountPercentage int    `json:"discountPercentage" db:"coupon_discount"`
}
