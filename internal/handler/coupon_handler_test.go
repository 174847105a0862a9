package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threadkart/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Validate(ctx context.Context, code, userID string) (*model.Coupon, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponService) Create(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponService) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCouponService) GetAll(ctx context.Context) ([]model.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Coupon), args.Error(1)
}

func TestCouponHandler_Validate(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCouponService)
	svc.On("Validate", mock.Anything, "SAVE10", "user-1").Return(&model.Coupon{
		Code:               "SAVE10",
		DiscountPercentage: 10,
		IsActive:           true,
	}, nil)

	h := NewCouponHandler(svc, logger)

	body, _ := json.Marshal(map[string]string{"code": "SAVE10"})
	req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate", bytes.NewReader(body))
	rec := serveAsUser(h.Validate, req, "user-1")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Coupon is valid", resp["message"])
	assert.Equal(t, "SAVE10", resp["code"])
	assert.Equal(t, float64(10), resp["discountPercentage"])
}

func TestCouponHandler_Validate_Rejections(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "Coupon not found",
			serviceErr:     model.ErrCouponNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Coupon expired",
			serviceErr:     model.ErrCouponExpired,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Usage cap reached",
			serviceErr:     model.ErrCouponUsageCap,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Already used by this user",
			serviceErr:     model.ErrCouponAlreadyUsed,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCouponService)
			svc.On("Validate", mock.Anything, "SAVE10", "user-1").Return(nil, tt.serviceErr)

			h := NewCouponHandler(svc, logger)

			body, _ := json.Marshal(map[string]string{"code": "SAVE10"})
			req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate", bytes.NewReader(body))
			rec := serveAsUser(h.Validate, req, "user-1")

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestCouponHandler_Validate_MissingCode(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCouponService)
	h := NewCouponHandler(svc, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate", bytes.NewReader([]byte(`{}`)))
	rec := serveAsUser(h.Validate, req, "user-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Validate")
}

func TestCouponHandler_Create(t *testing.T) {
	logger := zerolog.Nop()
	expiry := time.Now().Add(24 * time.Hour)

	svc := new(MockCouponService)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(req *model.CouponRequest) bool {
		return req.Code == "save10" && req.DiscountPercentage == 10
	})).Return(&model.Coupon{
		Code:               "SAVE10",
		DiscountPercentage: 10,
		ExpirationDate:     expiry,
		IsActive:           true,
	}, nil)

	h := NewCouponHandler(svc, logger)

	body, _ := json.Marshal(model.CouponRequest{
		Code:               "save10",
		DiscountPercentage: 10,
		ExpirationDate:     expiry,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/coupons", bytes.NewReader(body))
	req.Header.Set("X-User-Role", "admin")
	rec := serveAsUser(h.Collection, req, "admin-1")

	assert.Equal(t, http.StatusCreated, rec.Code)

	var created model.Coupon
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "SAVE10", created.Code)
}

func TestCouponHandler_Collection_AdminOnly(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCouponService)
	h := NewCouponHandler(svc, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/coupons", nil)
	rec := serveAsUser(h.Collection, req, "user-1")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertNotCalled(t, "GetAll")
}

func TestCouponHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCouponService)
	svc.On("GetAll", mock.Anything).Return([]model.Coupon{
		{Code: "SAVE10", DiscountPercentage: 10},
		{Code: "VIP50", DiscountPercentage: 50},
	}, nil)

	h := NewCouponHandler(svc, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/coupons", nil)
	req.Header.Set("X-User-Role", "admin")
	rec := serveAsUser(h.Collection, req, "admin-1")

	assert.Equal(t, http.StatusOK, rec.Code)

	var coupons []model.Coupon
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &coupons))
	assert.Len(t, coupons, 2)
}

func TestCouponHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCouponService)
	svc.On("Delete", mock.Anything, "SAVE10").Return(nil)

	h := NewCouponHandler(svc, logger)

	req := httptest.NewRequest(http.MethodDelete, "/api/coupons/SAVE10", nil)
	req.Header.Set("X-User-Role", "admin")
	rec := serveAsUser(h.Delete, req, "admin-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestCouponHandler_Delete_NotFound(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockCouponService)
	svc.On("Delete", mock.Anything, "MISSING").Return(model.ErrCouponNotFound)

	h := NewCouponHandler(svc, logger)

	req := httptest.NewRequest(http.MethodDelete, "/api/coupons/MISSING", nil)
	req.Header.Set("X-User-Role", "admin")
	rec := serveAsUser(h.Delete, req, "admin-1")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
