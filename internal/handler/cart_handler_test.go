package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"threadkart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID string) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID string, productID uuid.UUID) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockCartService) SetQuantity(ctx context.Context, userID string, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartService) Remove(ctx context.Context, userID string, productID uuid.UUID) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestCartHandler_Get(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	svc := new(MockCartService)
	svc.On("Get", mock.Anything, "user-1").Return([]model.CartLine{
		{Product: model.Product{ID: productID, Name: "Denim Jacket", Price: 100.00}, Quantity: 2},
	}, nil)

	h := NewCartHandler(svc, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := serveAsUser(h.Cart, req, "user-1")

	assert.Equal(t, http.StatusOK, rec.Code)

	var lines []model.CartLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "Denim Jacket", lines[0].Product.Name)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartHandler_Unauthenticated(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCartService)
	h := NewCartHandler(svc, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := serveAsUser(h.Cart, req, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Get")
}

func TestCartHandler_Add(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	svc := new(MockCartService)
	svc.On("Add", mock.Anything, "user-1", productID).Return(nil)
	svc.On("Get", mock.Anything, "user-1").Return([]model.CartLine{
		{Product: model.Product{ID: productID}, Quantity: 1},
	}, nil)

	h := NewCartHandler(svc, logger)

	body, _ := json.Marshal(map[string]interface{}{"productId": productID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/cart", bytes.NewReader(body))
	rec := serveAsUser(h.Cart, req, "user-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestCartHandler_Add_InsufficientStock(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	svc := new(MockCartService)
	svc.On("Add", mock.Anything, "user-1", productID).Return(model.ErrInsufficientStock)

	h := NewCartHandler(svc, logger)

	body, _ := json.Marshal(map[string]interface{}{"productId": productID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/cart", bytes.NewReader(body))
	rec := serveAsUser(h.Cart, req, "user-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not enough stock")
}

func TestCartHandler_Add_InvalidProductID(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCartService)
	h := NewCartHandler(svc, logger)

	body, _ := json.Marshal(map[string]interface{}{"productId": "not-a-uuid"})
	req := httptest.NewRequest(http.MethodPost, "/api/cart", bytes.NewReader(body))
	rec := serveAsUser(h.Cart, req, "user-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Add")
}

func TestCartHandler_SetQuantity(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	svc := new(MockCartService)
	svc.On("SetQuantity", mock.Anything, "user-1", productID, 3).Return(nil)
	svc.On("Get", mock.Anything, "user-1").Return([]model.CartLine{
		{Product: model.Product{ID: productID}, Quantity: 3},
	}, nil)

	h := NewCartHandler(svc, logger)

	body, _ := json.Marshal(map[string]interface{}{"productId": productID.String(), "quantity": 3})
	req := httptest.NewRequest(http.MethodPut, "/api/cart", bytes.NewReader(body))
	rec := serveAsUser(h.Cart, req, "user-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestCartHandler_RemoveLine(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	svc := new(MockCartService)
	svc.On("Remove", mock.Anything, "user-1", productID).Return(nil)
	svc.On("Get", mock.Anything, "user-1").Return([]model.CartLine{}, nil)

	h := NewCartHandler(svc, logger)

	body, _ := json.Marshal(map[string]interface{}{"productId": productID.String()})
	req := httptest.NewRequest(http.MethodDelete, "/api/cart", bytes.NewReader(body))
	rec := serveAsUser(h.Cart, req, "user-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestCartHandler_ClearCart(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCartService)
	svc.On("Clear", mock.Anything, "user-1").Return(nil)

	h := NewCartHandler(svc, logger)

	// No productId in the body means clear everything.
	req := httptest.NewRequest(http.MethodDelete, "/api/cart", bytes.NewReader([]byte(`{}`)))
	rec := serveAsUser(h.Cart, req, "user-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
	svc.AssertNotCalled(t, "Remove")
}

func TestCartHandler_MethodNotAllowed(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCartService)
	h := NewCartHandler(svc, logger)

	req := httptest.NewRequest(http.MethodPatch, "/api/cart", nil)
	rec := serveAsUser(h.Cart, req, "user-1")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
