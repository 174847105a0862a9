package model

import "github.com/google/uuid"

// CartItem represents one product line in a user's cart.
type CartItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// CartLine pairs a cart item with its current product details.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CheckoutItem is a client-submitted cart line at checkout initiation.
// Quantities come from the client; prices never do.
type CheckoutItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// CheckoutRequest represents the payload for initiating a checkout session.
type CheckoutRequest struct {
	Items      []CheckoutItem `json:"items"`
	CouponCode *string        `json:"couponCode,omitempty"`
}

// CheckoutResponse is returned when a payment session has been created.
type CheckoutResponse struct {
	SessionID   string  `json:"sessionId"`
	URL         string  `json:"url"`
	TotalAmount float64 `json:"totalAmount"`
	Discount    float64 `json:"discount"`
}
