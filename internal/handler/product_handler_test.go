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

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetFeatured(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetRecommended(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductService) ToggleFeatured(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func TestProductHandler_GetFeatured(t *testing.T) {
	products := []model.Product{
		{ID: uuid.New(), Name: "Denim Jacket", IsFeatured: true},
	}

	svc := new(MockProductService)
	svc.On("GetFeatured", mock.Anything).Return(products, nil)

	h := NewProductHandler(svc, zerolog.Nop())

	// Featured listing requires no authentication.
	req := httptest.NewRequest(http.MethodGet, "/api/products/featured", nil)
	rec := httptest.NewRecorder()
	h.GetFeatured(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []model.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 1)
}

func TestProductHandler_GetByCategory(t *testing.T) {
	products := []model.Product{
		{ID: uuid.New(), Name: "Denim Jacket", Category: "jackets"},
	}

	svc := new(MockProductService)
	svc.On("GetByCategory", mock.Anything, "jackets").Return(products, nil)

	h := NewProductHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/products/category/jackets", nil)
	rec := httptest.NewRecorder()
	h.GetByCategory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestProductHandler_Collection_AdminOnly(t *testing.T) {
	svc := new(MockProductService)
	h := NewProductHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := serveAsUser(h.Collection, req, "user-1")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertNotCalled(t, "GetAll")
}

func TestProductHandler_Create(t *testing.T) {
	created := &model.Product{ID: uuid.New(), Name: "Denim Jacket", Price: 100.00, Category: "jackets"}

	svc := new(MockProductService)
	svc.On("Create", mock.Anything, mock.AnythingOfType("*model.ProductRequest")).Return(created, nil)

	h := NewProductHandler(svc, zerolog.Nop())

	body, _ := json.Marshal(model.ProductRequest{Name: "Denim Jacket", Price: 100.00, Category: "jackets"})
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
	req.Header.Set("X-User-Role", "admin")
	rec := serveAsUser(h.Collection, req, "admin-1")

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestProductHandler_Delete(t *testing.T) {
	productID := uuid.New()

	svc := new(MockProductService)
	svc.On("Delete", mock.Anything, productID).Return(nil)

	h := NewProductHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+productID.String(), nil)
	req.Header.Set("X-User-Role", "admin")
	rec := serveAsUser(h.ByID, req, "admin-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestProductHandler_ToggleFeatured(t *testing.T) {
	productID := uuid.New()
	updated := &model.Product{ID: productID, Name: "Denim Jacket", IsFeatured: true}

	svc := new(MockProductService)
	svc.On("ToggleFeatured", mock.Anything, productID).Return(updated, nil)

	h := NewProductHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPatch, "/api/products/"+productID.String(), nil)
	req.Header.Set("X-User-Role", "admin")
	rec := serveAsUser(h.ByID, req, "admin-1")

	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.IsFeatured)
}
