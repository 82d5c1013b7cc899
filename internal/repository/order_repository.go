package repository

import (
	"context"
	"errors"
	"fmt"

	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Save upserts the order row, deletes items that are no longer part of the order and
// upserts the remaining ones, all within tx.
func (r *orderRepository) Save(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	orderQuery := `
		INSERT INTO orders (id, customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET customer_id = EXCLUDED.customer_id, updated_at = EXCLUDED.updated_at
	`

	_, err := tx.Exec(ctx, orderQuery, order.ID, order.CustomerID, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to save order")
		return fmt.Errorf("failed to save order: %w", err)
	}

	keep := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		keep[i] = item.ID
	}

	pruneQuery := `
		DELETE FROM order_items
		WHERE order_id = $1 AND NOT (id = ANY($2::uuid[]))
	`

	tag, err := tx.Exec(ctx, pruneQuery, order.ID, uuidStrings(keep))
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to remove dropped order items")
		return fmt.Errorf("failed to remove order items: %w", err)
	}

	if err := r.upsertItems(ctx, tx, order); err != nil {
		return err
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Int64("items_removed", tag.RowsAffected()).
		Msg("order saved successfully")

	return nil
}

func (r *orderRepository) upsertItems(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if len(order.Items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, line_no)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET quantity = EXCLUDED.quantity, line_no = EXCLUDED.line_no
	`

	batch := &pgx.Batch{}
	for i, item := range order.Items {
		batch.Queue(query, item.ID, order.ID, item.ProductID, item.Quantity, i)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, item := range order.Items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID.String()).
				Msg("failed to save order item")
			return fmt.Errorf("failed to save order item: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, customer_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	return r.getOne(ctx, r.pool, query, id)
}

// GetForUpdate retrieves an order inside tx and locks its row until the transaction ends.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, customer_id, created_at, updated_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	return r.getOne(ctx, tx, query, id)
}

func (r *orderRepository) getOne(ctx context.Context, q querier, query string, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := q.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, ErrNotFound
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	orders := []model.Order{order}
	if err := r.attachItems(ctx, q, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// GetAll retrieves every order with its items, oldest first.
func (r *orderRepository) GetAll(ctx context.Context) ([]model.Order, error) {
	query := `
		SELECT id, customer_id, created_at, updated_at
		FROM orders
		ORDER BY created_at, id
	`

	return r.list(ctx, query)
}

// GetByCustomerID retrieves the orders placed by a customer, oldest first.
func (r *orderRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	query := `
		SELECT id, customer_id, created_at, updated_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at, id
	`

	return r.list(ctx, query, customerID)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			rows.Close()
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachItems(ctx, r.pool, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachItems loads the items of all given orders with one query and assigns them in line order.
func (r *orderRepository) attachItems(ctx context.Context, q querier, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(orders))
	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		index[orders[i].ID] = i
		ids[i] = orders[i].ID
		orders[i].Items = []model.OrderItem{}
	}

	query := `
		SELECT id, order_id, product_id, quantity
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, line_no, id
	`

	rows, err := q.Query(ctx, query, uuidStrings(ids))
	if err != nil {
		r.logger.Error().Err(err).Int("order_count", len(orders)).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

// Delete removes an order by ID; its items go with it through ON DELETE CASCADE.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("order_id", id.String()).Msg("order not found for delete")
		return ErrNotFound
	}

	r.logger.Debug().Str("order_id", id.String()).Msg("order deleted")

	return nil
}
