package router

import (
	"net/http"
	"strings"

	"threadkart/internal/handler"
	"threadkart/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	couponHandler *handler.CouponHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Product handler function
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/api/products" || path == "/api/products/":
			productHandler.Collection(w, r)
		case path == "/api/products/featured":
			productHandler.GetFeatured(w, r)
		case path == "/api/products/recommended":
			productHandler.GetRecommended(w, r)
		case strings.HasPrefix(path, "/api/products/category/"):
			productHandler.GetByCategory(w, r)
		default:
			productHandler.ByID(w, r)
		}
	}

	// Register product routes (both with and without trailing slash)
	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// Cart routes
	mux.HandleFunc("/api/cart", cartHandler.Cart)
	mux.HandleFunc("/api/cart/", cartHandler.Cart)

	// Coupon handler function
	couponRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/api/coupons" || path == "/api/coupons/":
			couponHandler.Collection(w, r)
		case path == "/api/coupons/validate":
			couponHandler.Validate(w, r)
		default:
			couponHandler.Delete(w, r)
		}
	}

	mux.HandleFunc("/api/coupons", couponRouteHandler)
	mux.HandleFunc("/api/coupons/", couponRouteHandler)

	// Checkout and payment completion routes
	mux.HandleFunc("/api/checkout/session", checkoutHandler.CreateSession)
	mux.HandleFunc("/api/checkout/confirm", checkoutHandler.Confirm)
	mux.HandleFunc("/api/webhooks/payment", checkoutHandler.Webhook)

	// Order handler function
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/orders" || r.URL.Path == "/api/orders/" {
			orderHandler.GetHistory(w, r)
			return
		}
		orderHandler.GetByID(w, r)
	}

	// Register order routes (both with and without trailing slash)
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth -> UserContext
	var h http.Handler = mux
	h = middleware.UserContext(h)
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
