package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"order-service/internal/handler"
	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubProductService struct {
	mock.Mock
}

func (s *stubProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := s.Called(limit, offset)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (s *stubProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := s.Called(id)
	return args.Get(0).(*model.Product), args.Error(1)
}

type stubOrderService struct {
	mock.Mock
}

func (s *stubOrderService) Create(ctx context.Context, req *model.OrderCreateRequest) (*model.OrderResponse, error) {
	args := s.Called(req)
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (s *stubOrderService) Update(ctx context.Context, req *model.OrderUpdateRequest) (*model.OrderResponse, error) {
	args := s.Called(req)
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (s *stubOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Called(id).Error(0)
}

func (s *stubOrderService) GetAll(ctx context.Context) ([]model.OrderResponse, error) {
	args := s.Called()
	return args.Get(0).([]model.OrderResponse), args.Error(1)
}

func (s *stubOrderService) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]model.OrderResponse, error) {
	args := s.Called(customerID)
	return args.Get(0).([]model.OrderResponse), args.Error(1)
}

func (s *stubOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := s.Called(id)
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func setupRouter(t *testing.T) (http.Handler, *stubProductService, *stubOrderService) {
	t.Helper()

	logger := zerolog.Nop()
	products := new(stubProductService)
	orders := new(stubOrderService)

	h := New(
		handler.NewProductHandler(products, logger),
		handler.NewOrderHandler(orders, logger),
		handler.NewHealthHandler(nil, logger),
		logger,
	)

	return h, products, orders
}

func TestRouter_Routes(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setup          func(p *stubProductService, o *stubOrderService)
		expectedStatus int
	}{
		{
			name:           "Health",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:   "List products",
			method: http.MethodGet,
			path:   "/api/products?limit=2&offset=4",
			setup: func(p *stubProductService, o *stubOrderService) {
				p.On("GetAll", 2, 4).Return([]model.Product{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Get product",
			method: http.MethodGet,
			path:   "/api/products/" + id.String(),
			setup: func(p *stubProductService, o *stubOrderService) {
				p.On("GetByID", id).Return(&model.Product{ID: id}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Create order",
			method: http.MethodPost,
			path:   "/api/orders",
			body:   `{"customerId":"` + id.String() + `","items":[]}`,
			setup: func(p *stubProductService, o *stubOrderService) {
				o.On("Create", mock.Anything).Return(&model.OrderResponse{ID: id}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:   "List orders",
			method: http.MethodGet,
			path:   "/api/orders",
			setup: func(p *stubProductService, o *stubOrderService) {
				o.On("GetAll").Return([]model.OrderResponse{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Get order",
			method: http.MethodGet,
			path:   "/api/orders/" + id.String(),
			setup: func(p *stubProductService, o *stubOrderService) {
				o.On("GetByID", id).Return(&model.OrderResponse{ID: id}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Update order",
			method: http.MethodPut,
			path:   "/api/orders/" + id.String(),
			body:   `{"customerId":"` + id.String() + `","items":[]}`,
			setup: func(p *stubProductService, o *stubOrderService) {
				o.On("Update", mock.Anything).Return(&model.OrderResponse{ID: id}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Delete order",
			method: http.MethodDelete,
			path:   "/api/orders/" + id.String(),
			setup: func(p *stubProductService, o *stubOrderService) {
				o.On("Delete", id).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "Orders by customer",
			method: http.MethodGet,
			path:   "/api/customers/" + id.String() + "/orders",
			setup: func(p *stubProductService, o *stubOrderService) {
				o.On("GetByCustomerID", id).Return([]model.OrderResponse{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown route",
			method:         http.MethodGet,
			path:           "/api/unknown",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPatch,
			path:           "/api/orders/" + id.String(),
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, products, orders := setupRouter(t)
			if tt.setup != nil {
				tt.setup(products, orders)
			}

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			products.AssertExpectations(t)
			orders.AssertExpectations(t)
		})
	}
}

func TestRouter_NotFoundBody(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeRouteNotFound, resp.Error)
	assert.Equal(t, "route not found", resp.Message)
	assert.NotEmpty(t, resp.CorrelationID)
}

func TestRouter_MethodNotAllowedBody(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeMethodNotAllowed, resp.Error)
	assert.Equal(t, "method not allowed", resp.Message)
	assert.NotEqual(t, model.ErrCodeInvalidRequest, resp.Error)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Contains(t, []int{http.StatusOK, http.StatusNoContent}, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
