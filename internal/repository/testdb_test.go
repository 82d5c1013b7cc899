package repository

import (
	"context"
	"testing"
	"time"

	"order-service/internal/database"
	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the service schema and returns a pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed repository test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.ApplySchema(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func newCustomer(first, last string) model.Customer {
	return model.Customer{
		ID:        uuid.New(),
		FirstName: first,
		LastName:  last,
		Email:     first + "@example.com",
	}
}

func newProduct(name, price string, stock int) model.Product {
	return model.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func seedCustomers(t *testing.T, pool *pgxpool.Pool, customers ...model.Customer) {
	t.Helper()

	for _, c := range customers {
		_, err := pool.Exec(context.Background(),
			`INSERT INTO customers (id, first_name, last_name, email) VALUES ($1, $2, $3, $4)`,
			c.ID, c.FirstName, c.LastName, c.Email)
		require.NoError(t, err)
	}
}

func seedProducts(t *testing.T, pool *pgxpool.Pool, products ...model.Product) {
	t.Helper()

	for _, p := range products {
		_, err := pool.Exec(context.Background(),
			`INSERT INTO products (id, name, price, stock) VALUES ($1, $2, $3, $4)`,
			p.ID, p.Name, p.Price, p.Stock)
		require.NoError(t, err)
	}
}
