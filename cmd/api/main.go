package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadkart/internal/cache"
	"threadkart/internal/cart"
	"threadkart/internal/config"
	"threadkart/internal/coupon"
	"threadkart/internal/database"
	"threadkart/internal/handler"
	"threadkart/internal/payment"
	"threadkart/internal/repository"
	"threadkart/internal/router"
	"threadkart/internal/service"
	"threadkart/internal/storage"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting threadkart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Apply pending database migrations before opening the pool
	if err := database.Migrate(cfg.Database.ConnectionString(), cfg.Database.MigrationsPath, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize redis client for the cart store and featured-products cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)

	// Initialize coupon validator
	validator := coupon.NewValidator(couponRepo, logger)

	// Initialize payment provider client
	provider := payment.NewHTTPClient(
		cfg.Payment.BaseURL,
		cfg.Payment.SecretKey,
		cfg.Payment.FetchTimeout,
		logger,
	)

	// Initialize image storage with a discard fallback when S3 is disabled
	var images storage.ImageStore
	if cfg.S3.Enabled {
		images, err = storage.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 image store, product images will not be stored")
			images = storage.NewNoopStore(logger)
		}
	} else {
		images = storage.NewNoopStore(logger)
		logger.Info().Msg("product image storage disabled (S3 disabled)")
	}

	// Initialize redis-backed stores
	featuredCache := cache.NewRedisFeaturedCache(redisClient)
	cartStore := cart.NewRedisStore(redisClient)

	// Initialize services
	productService := service.NewProductService(productRepo, featuredCache, images, logger)
	cartService := service.NewCartService(cartStore, productRepo, logger)
	couponService := service.NewCouponService(couponRepo, validator, logger)
	orderService := service.NewOrderService(orderRepo, logger)
	checkoutService := service.NewCheckoutService(
		provider,
		orderRepo,
		productRepo,
		couponRepo,
		validator,
		cartStore,
		cfg.Payment.WebhookSecret,
		cfg.Payment.SuccessURL,
		cfg.Payment.CancelURL,
		logger,
	)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	couponHandler := handler.NewCouponHandler(couponService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Initialize router
	mux := router.New(
		productHandler,
		cartHandler,
		couponHandler,
		checkoutHandler,
		orderHandler,
		cfg.Auth.APIKey,
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
