package service

import (
	"context"

	"order-service/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for browsing the product catalogue.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create validates the request against the customer directory and current stock,
	// then persists a new order.
	Create(ctx context.Context, req *model.OrderCreateRequest) (*model.OrderResponse, error)

	// Update replaces the customer and line items of an existing order. Items for products
	// that stay in the order keep their identity.
	Update(ctx context.Context, req *model.OrderUpdateRequest) (*model.OrderResponse, error)

	// Delete removes an order and its items.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetAll returns every order priced against the current catalogue.
	GetAll(ctx context.Context) ([]model.OrderResponse, error)

	// GetByCustomerID returns the orders placed by a customer.
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]model.OrderResponse, error)

	// GetByID returns a single order.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}
