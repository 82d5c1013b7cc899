package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeEmptyOrder       = "EMPTY_ORDER"
	ErrCodeCustomerNotFound = "CUSTOMER_NOT_FOUND"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound    = "ORDER_NOT_FOUND"
	ErrCodeOutOfStock       = "OUT_OF_STOCK"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeRouteNotFound    = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidRequest   = NewDomainError(ErrCodeInvalidRequest, "Invalid order request")
	ErrInvalidQuantity  = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be between 1 and 2147483647")
	ErrEmptyOrder       = NewDomainError(ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrCustomerNotFound = NewDomainError(ErrCodeCustomerNotFound, "Customer not found")
	ErrProductNotFound  = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound    = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrOutOfStock       = NewDomainError(ErrCodeOutOfStock, "Product out of stock")
)

// OutOfStockError is returned when a requested quantity exceeds the product's current stock.
// It matches ErrOutOfStock under errors.Is.
type OutOfStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

// NewOutOfStockError creates an OutOfStockError for the given product.
func NewOutOfStockError(product *Product, requested int) *OutOfStockError {
	return &OutOfStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   requested,
		Available:   product.Stock,
	}
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("Product out of stock: %s", e.ProductName)
}

// Is lets errors.Is(err, ErrOutOfStock) match.
func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}
