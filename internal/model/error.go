package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeCouponNotFound      = "COUPON_NOT_FOUND"
	ErrCodeCouponExpired       = "COUPON_EXPIRED"
	ErrCodeCouponUsageCap      = "COUPON_USAGE_CAP_REACHED"
	ErrCodeCouponAlreadyUsed   = "COUPON_ALREADY_USED"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodePaymentNotCompleted = "PAYMENT_NOT_COMPLETED"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure carrying a stable error code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrCouponNotFound      = NewDomainError(ErrCodeCouponNotFound, "Invalid or expired coupon")
	ErrCouponExpired       = NewDomainError(ErrCodeCouponExpired, "Coupon is inactive or expired")
	ErrCouponUsageCap      = NewDomainError(ErrCodeCouponUsageCap, "Coupon usage limit reached")
	ErrCouponAlreadyUsed   = NewDomainError(ErrCodeCouponAlreadyUsed, "Coupon already used by this user")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInsufficientStock   = NewDomainError(ErrCodeInsufficientStock, "Not enough stock available")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidSignature    = NewDomainError(ErrCodeInvalidSignature, "Webhook signature verification failed")
	ErrPaymentNotCompleted = NewDomainError(ErrCodePaymentNotCompleted, "Payment not completed")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
