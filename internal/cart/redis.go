package cart

import (
	"context"
	"fmt"
	"strconv"

	"threadkart/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisStore keeps one hash per user: field = product ID, value = quantity.
// HIncrBy makes concurrent adds to the same line safe without a lock.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a redis-backed cart store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func (s *redisStore) Get(ctx context.Context, userID string) ([]model.CartItem, error) {
	fields, err := s.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis cart read failed: %w", err)
	}

	items := make([]model.CartItem, 0, len(fields))
	for field, value := range fields {
		productID, err := uuid.Parse(field)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart entry %q: %w", field, err)
		}

		quantity, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart quantity %q: %w", value, err)
		}

		items = append(items, model.CartItem{ProductID: productID, Quantity: quantity})
	}

	return items, nil
}

func (s *redisStore) Add(ctx context.Context, userID string, productID uuid.UUID) (int, error) {
	quantity, err := s.client.HIncrBy(ctx, cartKey(userID), productID.String(), 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis cart add failed: %w", err)
	}

	return int(quantity), nil
}

func (s *redisStore) SetQuantity(ctx context.Context, userID string, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, userID, productID)
	}

	if err := s.client.HSet(ctx, cartKey(userID), productID.String(), quantity).Err(); err != nil {
		return fmt.Errorf("redis cart set failed: %w", err)
	}

	return nil
}

func (s *redisStore) Remove(ctx context.Context, userID string, productID uuid.UUID) error {
	if err := s.client.HDel(ctx, cartKey(userID), productID.String()).Err(); err != nil {
		return fmt.Errorf("redis cart remove failed: %w", err)
	}

	return nil
}

func (s *redisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis cart clear failed: %w", err)
	}

	return nil
}
