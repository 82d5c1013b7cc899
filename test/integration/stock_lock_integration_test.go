package integration

import (
	"context"
	"testing"
	"time"

	"order-service/internal/model"
	"order-service/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockLock_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	ctx := context.Background()

	CleanupDB(t, testDB.Pool)
	f := NewFixture()
	SeedCatalog(t, testDB.Pool, f)

	tx, err := orderRepo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	product, err := productRepo.GetForOrder(ctx, tx, f.Keyboard.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, product.Stock)

	drained := f.Keyboard
	drained.Stock = 0

	// A stock change cannot land while an order transaction holds the product row.
	blockedCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	err = productRepo.Upsert(blockedCtx, []model.Product{drained})
	require.Error(t, err)

	require.NoError(t, tx.Commit(ctx))

	require.NoError(t, productRepo.Upsert(ctx, []model.Product{drained}))

	product, err = productRepo.GetByID(ctx, f.Keyboard.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, product.Stock)
}

func TestSeedCatalog_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	CleanupDB(t, testDB.Pool)
	f := NewFixture()
	SeedCatalog(t, testDB.Pool, f)

	// Re-importing is an upsert, not a duplicate insert.
	f.Mouse.Stock = 42
	SeedCatalog(t, testDB.Pool, f)

	customers, err := repository.NewCustomerRepository(testDB.Pool, logger).GetByIDs(ctx, []uuid.UUID{f.Ada.ID, f.Grace.ID})
	require.NoError(t, err)
	assert.Len(t, customers, 2)

	products, err := repository.NewProductRepository(testDB.Pool, logger).GetAll(ctx, 100, 0)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	mouse, err := repository.NewProductRepository(testDB.Pool, logger).GetByID(ctx, f.Mouse.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, mouse.Stock)
}
