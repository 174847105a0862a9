// Package payment defines the port to the hosted payment provider: session
// creation, authoritative session lookup, and signed webhook event parsing.
package payment

import (
	"context"
	"errors"
)

// Session payment status values reported by the provider.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
	StatusFailed = "failed"
)

// Webhook event types delivered by the provider, at-least-once and in no
// guaranteed order.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	EventPaymentFailed         = "payment_intent.payment_failed"
	EventChargeRefunded        = "charge.refunded"
)

// Metadata keys attached to a session at creation time. The embedded
// metadata is the sole source of truth consumed at reconciliation.
const (
	MetadataUserID     = "userId"
	MetadataCouponCode = "couponCode"
	MetadataProducts   = "products"
)

// ErrProviderUnavailable marks transient failures (timeouts, connection
// errors, provider 5xx). Callers may retry; reconciliation is idempotent.
var ErrProviderUnavailable = errors.New("payment provider unavailable")

// LineItem describes one purchasable line sent to the provider.
// Amounts are in the smallest currency unit.
type LineItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	UnitAmount  int64  `json:"unit_amount"`
	Quantity    int    `json:"quantity"`
}

// Session is the provider-authoritative record of a checkout session.
type Session struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
}

// CreateSessionParams carries everything the provider needs to host a
// checkout page. Discount is subtracted from the line item total so the
// amount charged already reflects any coupon. Metadata is immutable once
// the session exists.
type CreateSessionParams struct {
	LineItems  []LineItem        `json:"line_items"`
	Discount   int64             `json:"discount,omitempty"`
	Metadata   map[string]string `json:"metadata"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
}

// Event is a verified webhook event.
type Event struct {
	ID         string
	Type       string
	SessionRef string
}

// Client talks to the hosted payment provider.
type Client interface {
	// CreateSession creates a hosted checkout session.
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)

	// FetchSession retrieves the authoritative session state by ID.
	// Money amounts and payment status must always come from here, never
	// from a webhook payload or client request body.
	FetchSession(ctx context.Context, id string) (*Session, error)
}
