package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"threadkart/internal/database"
	"threadkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the schema
// migrations and returns a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.Migrate(connStr, "../../migrations", zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts inserts test product data and returns the generated IDs.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) []uuid.UUID {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		name     string
		price    float64
		category string
		stock    int
	}{
		{"Denim Jacket", 100.00, "jackets", 10},
		{"Wool Scarf", 25.50, "accessories", 20},
		{"Canvas Tote", 40.00, "bags", 5},
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = uuid.New()
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, price, category, stock) VALUES ($1, $2, $3, $4, $5)`,
			ids[i], p.name, p.price, p.category, p.stock,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.name, err)
		}
	}

	return ids
}

// SeedCoupon inserts a coupon with the given usage cap.
func SeedCoupon(t *testing.T, pool *pgxpool.Pool, code string, discount int, maxUses *int) {
	t.Helper()

	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO coupons (code, discount_percentage, expiration_date, is_active, max_uses)
		 VALUES ($1, $2, $3, TRUE, $4)`,
		model.NormalizeCouponCode(code), discount, time.Now().Add(24*time.Hour), maxUses,
	)
	if err != nil {
		t.Fatalf("failed to seed coupon %s: %v", code, err)
	}
}

// CleanupDB removes all data from the test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "coupon_redemptions", "coupons", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
