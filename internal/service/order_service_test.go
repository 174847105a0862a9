package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"threadkart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_GetByID_AccessControl(t *testing.T) {
	ctx := context.Background()

	orderID := uuid.New()
	order := &model.Order{
		ID:        orderID,
		UserID:    "owner-1",
		CreatedAt: time.Now(),
	}

	tests := []struct {
		name        string
		requesterID string
		isAdmin     bool
		expectErr   bool
	}{
		{name: "Owner can read", requesterID: "owner-1", isAdmin: false, expectErr: false},
		{name: "Admin can read", requesterID: "admin-9", isAdmin: true, expectErr: false},
		{name: "Stranger is denied", requesterID: "other-2", isAdmin: false, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			orderRepo.On("GetByID", ctx, orderID).Return(order, nil)

			svc := NewOrderService(orderRepo, zerolog.Nop())

			got, err := svc.GetByID(ctx, orderID, tt.requesterID, tt.isAdmin)

			if tt.expectErr {
				require.Error(t, err)
				var domainErr *model.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, model.ErrCodeForbidden, domainErr.Code)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, orderID, got.ID)
			}
		})
	}
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()

	orderID := uuid.New()
	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", ctx, orderID).Return(nil, nil)

	svc := NewOrderService(orderRepo, zerolog.Nop())

	got, err := svc.GetByID(ctx, orderID, "user-1", false)

	require.Error(t, err)
	assert.Equal(t, model.ErrOrderNotFound, err)
	assert.Nil(t, got)
}

func TestOrderService_GetHistory(t *testing.T) {
	ctx := context.Background()

	orders := []model.Order{
		{ID: uuid.New(), UserID: "user-1"},
		{ID: uuid.New(), UserID: "user-1"},
	}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByUser", ctx, "user-1").Return(orders, nil)

	svc := NewOrderService(orderRepo, zerolog.Nop())

	got, err := svc.GetHistory(ctx, "user-1")

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestOrderService_GetHistory_RepositoryError(t *testing.T) {
	ctx := context.Background()

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByUser", ctx, "user-1").Return(nil, errors.New("database error"))

	svc := NewOrderService(orderRepo, zerolog.Nop())

	got, err := svc.GetHistory(ctx, "user-1")

	require.Error(t, err)
	assert.Nil(t, got)
}
