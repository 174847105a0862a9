package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Unique violation",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_external_session_id"},
			expected: true,
		},
		{
			name:     "Wrapped unique violation",
			err:      fmt.Errorf("failed to create order: %w", &pgconn.PgError{Code: "23505"}),
			expected: true,
		},
		{
			name:     "Other postgres error",
			err:      &pgconn.PgError{Code: "23503"},
			expected: false,
		},
		{
			name:     "Non-postgres error",
			err:      errors.New("connection reset"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUniqueViolation(tt.err))
		})
	}
}
