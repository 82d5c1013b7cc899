package repository

import (
	"context"
	"errors"

	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// CustomerRepository defines the interface for customer data access operations.
type CustomerRepository interface {
	// GetByID retrieves a single customer. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// GetByIDs retrieves the customers that exist among ids. Missing ids are skipped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Customer, error)

	// Upsert inserts or replaces customers in a single transaction.
	Upsert(ctx context.Context, customers []model.Customer) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves the products that exist among ids. Missing ids are skipped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// GetForOrder reads a product inside tx and holds a share lock on its row until the
	// transaction ends, so its stock cannot change under an order being validated.
	// Returns ErrNotFound if absent.
	GetForOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error)

	// Upsert inserts or replaces products in a single transaction.
	Upsert(ctx context.Context, products []model.Product) error
}

// OrderRepository defines the interface for order aggregate persistence.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Save writes the whole aggregate within tx: the order row, its current items, and the
	// removal of any persisted item no longer in order.Items.
	Save(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order with its items. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate retrieves an order with its items inside tx, locking the order row.
	// Returns ErrNotFound if absent.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetAll retrieves every order with its items.
	GetAll(ctx context.Context) ([]model.Order, error)

	// GetByCustomerID retrieves the orders placed by a customer.
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)

	// Delete removes an order and, by cascade, its items. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uuidStrings converts ids to their text form for uuid[] parameters. The result is never nil
// so that an empty input binds as an empty array rather than NULL.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
