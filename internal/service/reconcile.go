package service

import (
	"math"

	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// line is a validated requested line after duplicates have been collapsed.
type line struct {
	ProductID uuid.UUID
	Quantity  int
}

// maxLineQuantity is the largest quantity a stored order item can hold (an INTEGER column).
const maxLineQuantity = math.MaxInt32

// collapseLines merges lines for the same product by summing quantities.
// The result keeps the order in which each product first appeared. A line, or a sum of lines,
// above maxLineQuantity is rejected with ErrInvalidQuantity. Quantities must already be positive.
func collapseLines(items []model.OrderItemRequest) ([]line, error) {
	index := make(map[uuid.UUID]int, len(items))
	lines := make([]line, 0, len(items))

	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			if item.Quantity > maxLineQuantity-lines[i].Quantity {
				return nil, model.ErrInvalidQuantity
			}
			lines[i].Quantity += item.Quantity
			continue
		}
		if item.Quantity > maxLineQuantity {
			return nil, model.ErrInvalidQuantity
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return lines, nil
}

// reconcile computes the item set of orderID after applying the requested lines to existing.
// An existing item is kept, with the requested quantity, when its product is requested again;
// requested products without an existing item get a new item; all other existing items are dropped.
func reconcile(orderID uuid.UUID, existing []model.OrderItem, lines []line) []model.OrderItem {
	byProduct := make(map[uuid.UUID]model.OrderItem, len(existing))
	for _, item := range existing {
		byProduct[item.ProductID] = item
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		item, ok := byProduct[l.ProductID]
		if !ok {
			item = model.OrderItem{
				ID:        uuid.New(),
				ProductID: l.ProductID,
			}
		}
		item.OrderID = orderID
		item.Quantity = l.Quantity
		items = append(items, item)
	}

	return items
}

// Project builds the read view of order using the current customer and product data.
// products must contain every product the order references.
func Project(order *model.Order, customer *model.Customer, products map[uuid.UUID]*model.Product) (*model.OrderResponse, error) {
	resp := &model.OrderResponse{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		CustomerName:  customer.FullName(),
		CustomerEmail: customer.Email,
		TotalAmount:   decimal.Zero,
		Items:         make([]model.OrderItemResponse, 0, len(order.Items)),
	}

	for _, item := range order.Items {
		product, ok := products[item.ProductID]
		if !ok || product == nil {
			return nil, model.ErrProductNotFound
		}

		resp.Items = append(resp.Items, model.OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Price:       product.Price,
		})
		resp.TotalAmount = resp.TotalAmount.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return resp, nil
}
