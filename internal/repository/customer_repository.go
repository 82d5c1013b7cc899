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

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

// GetByID retrieves a single customer by its ID.
func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	query := `
		SELECT id, first_name, last_name, email
		FROM customers
		WHERE id = $1
	`

	var c model.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("customer_id", id.String()).Msg("customer not found")
			return nil, ErrNotFound
		}
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return &c, nil
}

// GetByIDs retrieves multiple customers by their IDs.
func (r *customerRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Customer, error) {
	if len(ids) == 0 {
		return []model.Customer{}, nil
	}

	query := `
		SELECT id, first_name, last_name, email
		FROM customers
		WHERE id = ANY($1::uuid[])
	`

	rows, err := r.pool.Query(ctx, query, uuidStrings(ids))
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query customers by IDs")
		return nil, fmt.Errorf("failed to query customers by IDs: %w", err)
	}
	defer rows.Close()

	customers := make([]model.Customer, 0, len(ids))
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan customer row")
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating customer rows")
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// Upsert inserts or replaces customers in a single transaction.
func (r *customerRepository) Upsert(ctx context.Context, customers []model.Customer) error {
	if len(customers) == 0 {
		return nil
	}

	query := `
		INSERT INTO customers (id, first_name, last_name, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, email = EXCLUDED.email
	`

	batch := &pgx.Batch{}
	for _, c := range customers {
		batch.Queue(query, c.ID, c.FirstName, c.LastName, c.Email)
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := range customers {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert customer %s: %w", customers[i].ID, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(customers)).Msg("failed to upsert customers")
		return err
	}

	r.logger.Debug().Int("count", len(customers)).Msg("customers upserted")

	return nil
}
