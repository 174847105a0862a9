package service

import (
	"context"
	"fmt"

	"threadkart/internal/model"
	"threadkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// GetByID retrieves an order, enforcing owner-or-admin access.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID, requesterID string, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.UserID != requesterID && !isAdmin {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("requester", requesterID).
			Msg("order access denied")
		return nil, model.NewDomainError(model.ErrCodeForbidden, "Access denied")
	}

	return order, nil
}

// GetHistory retrieves a user's orders, newest first.
func (s *orderService) GetHistory(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get order history")
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}

	return orders, nil
}
