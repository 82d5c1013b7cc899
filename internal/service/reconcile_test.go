package service

import (
	"math"
	"testing"

	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseLines(t *testing.T) {
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	lines, err := collapseLines([]model.OrderItemRequest{
		{ProductID: p2, Quantity: 1},
		{ProductID: p1, Quantity: 2},
		{ProductID: p2, Quantity: 4},
		{ProductID: p3, Quantity: 1},
		{ProductID: p1, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, []line{
		{ProductID: p2, Quantity: 5},
		{ProductID: p1, Quantity: 3},
		{ProductID: p3, Quantity: 1},
	}, lines)
}

func TestCollapseLines_QuantityRange(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	tests := []struct {
		name        string
		items       []model.OrderItemRequest
		expectedErr error
		expected    []line
	}{
		{
			name:     "Single line at the limit",
			items:    []model.OrderItemRequest{{ProductID: p1, Quantity: math.MaxInt32}},
			expected: []line{{ProductID: p1, Quantity: math.MaxInt32}},
		},
		{
			name:        "Single line above the limit",
			items:       []model.OrderItemRequest{{ProductID: p1, Quantity: math.MaxInt32 + 1}},
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name: "Duplicates summing to the limit",
			items: []model.OrderItemRequest{
				{ProductID: p1, Quantity: math.MaxInt32 - 1},
				{ProductID: p2, Quantity: 1},
				{ProductID: p1, Quantity: 1},
			},
			expected: []line{{ProductID: p1, Quantity: math.MaxInt32}, {ProductID: p2, Quantity: 1}},
		},
		{
			name: "Duplicates summing past the limit",
			items: []model.OrderItemRequest{
				{ProductID: p1, Quantity: math.MaxInt32},
				{ProductID: p1, Quantity: 1},
			},
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name: "Duplicates that would wrap int",
			items: []model.OrderItemRequest{
				{ProductID: p1, Quantity: math.MaxInt/2 + 1},
				{ProductID: p1, Quantity: math.MaxInt/2 + 1},
			},
			expectedErr: model.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := collapseLines(tt.items)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, lines)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lines)
		})
	}
}

func TestReconcile(t *testing.T) {
	orderID := uuid.New()
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	keep := model.OrderItem{ID: uuid.New(), OrderID: orderID, ProductID: p1, Quantity: 1}
	drop := model.OrderItem{ID: uuid.New(), OrderID: orderID, ProductID: p2, Quantity: 2}

	t.Run("New order gets fresh items", func(t *testing.T) {
		items := reconcile(orderID, nil, []line{{ProductID: p1, Quantity: 3}, {ProductID: p2, Quantity: 1}})

		require.Len(t, items, 2)
		assert.NotEqual(t, items[0].ID, items[1].ID)
		for _, item := range items {
			assert.Equal(t, orderID, item.OrderID)
			assert.NotEqual(t, uuid.Nil, item.ID)
		}
	})

	t.Run("Matching product keeps identity", func(t *testing.T) {
		items := reconcile(orderID, []model.OrderItem{keep, drop}, []line{
			{ProductID: p3, Quantity: 7},
			{ProductID: p1, Quantity: 9},
		})

		require.Len(t, items, 2)
		assert.Equal(t, p3, items[0].ProductID)
		assert.NotEqual(t, drop.ID, items[0].ID)
		assert.Equal(t, keep.ID, items[1].ID)
		assert.Equal(t, 9, items[1].Quantity)
	})

	t.Run("Existing items are not mutated", func(t *testing.T) {
		existing := []model.OrderItem{keep}

		reconcile(orderID, existing, []line{{ProductID: p1, Quantity: 42}})

		assert.Equal(t, 1, existing[0].Quantity)
	})

	t.Run("Unrequested items are dropped", func(t *testing.T) {
		items := reconcile(orderID, []model.OrderItem{keep, drop}, []line{{ProductID: p2, Quantity: 1}})

		require.Len(t, items, 1)
		assert.Equal(t, drop.ID, items[0].ID)
	})
}

func TestProject(t *testing.T) {
	a := &model.Product{ID: uuid.New(), Name: "A", Price: decimal.RequireFromString("19.99")}
	b := &model.Product{ID: uuid.New(), Name: "B", Price: decimal.RequireFromString("0.10")}
	customer := &model.Customer{ID: uuid.New(), FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}

	order := &model.Order{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		Items: []model.OrderItem{
			{ID: uuid.New(), ProductID: a.ID, Quantity: 3},
			{ID: uuid.New(), ProductID: b.ID, Quantity: 7},
		},
	}
	products := map[uuid.UUID]*model.Product{a.ID: a, b.ID: b}

	t.Run("Total is exact", func(t *testing.T) {
		resp, err := Project(order, customer, products)

		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("60.67").Equal(resp.TotalAmount), "got %s", resp.TotalAmount)
		assert.Equal(t, "Grace Hopper", resp.CustomerName)
		assert.Equal(t, "grace@example.com", resp.CustomerEmail)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "A", resp.Items[0].ProductName)
		assert.True(t, a.Price.Equal(resp.Items[0].Price))
		assert.Equal(t, 7, resp.Items[1].Quantity)
	})

	t.Run("Idempotent", func(t *testing.T) {
		first, err := Project(order, customer, products)
		require.NoError(t, err)
		second, err := Project(order, customer, products)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Reflects current catalogue price", func(t *testing.T) {
		repriced := *a
		repriced.Price = decimal.RequireFromString("20.00")

		resp, err := Project(order, customer, map[uuid.UUID]*model.Product{a.ID: &repriced, b.ID: b})

		require.NoError(t, err)
		assert.Equal(t, "60.7", resp.TotalAmount.String())
	})

	t.Run("Missing product", func(t *testing.T) {
		_, err := Project(order, customer, map[uuid.UUID]*model.Product{a.ID: a})

		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}
