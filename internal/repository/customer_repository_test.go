package repository

import (
	"context"
	"testing"

	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCustomerRepository(pool, zerolog.Nop())
	ctx := context.Background()

	ada := newCustomer("Ada", "Lovelace")
	alan := newCustomer("Alan", "Turing")
	seedCustomers(t, pool, ada)

	t.Run("GetByID existing", func(t *testing.T) {
		got, err := repo.GetByID(ctx, ada.ID)

		require.NoError(t, err)
		assert.Equal(t, ada, *got)
	})

	t.Run("GetByID missing", func(t *testing.T) {
		got, err := repo.GetByID(ctx, uuid.New())

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("Upsert inserts and updates", func(t *testing.T) {
		ada.Email = "ada@analytical.engine"
		require.NoError(t, repo.Upsert(ctx, []model.Customer{ada, alan}))

		got, err := repo.GetByIDs(ctx, []uuid.UUID{ada.ID, alan.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, got, 2)

		byID := map[uuid.UUID]model.Customer{}
		for _, c := range got {
			byID[c.ID] = c
		}
		assert.Equal(t, "ada@analytical.engine", byID[ada.ID].Email)
		assert.Equal(t, "Turing", byID[alan.ID].LastName)
	})
}
