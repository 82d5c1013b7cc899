package events

import (
	"context"
	"time"

	"order-service/internal/model"

	"github.com/google/uuid"
)

// Order event types.
const (
	OrderCreated = "order.created"
	OrderUpdated = "order.updated"
	OrderDeleted = "order.deleted"
)

// OrderEvent is the message emitted after an order change has been committed.
type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    uuid.UUID   `json:"orderId"`
	CustomerID uuid.UUID   `json:"customerId,omitempty"`
	Items      []EventItem `json:"items,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// EventItem is a single line of an OrderEvent.
type EventItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// NewOrderEvent builds an event of the given type from a persisted order.
func NewOrderEvent(eventType string, order *model.Order) OrderEvent {
	items := make([]EventItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = EventItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	return OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Items:      items,
		OccurredAt: time.Now().UTC(),
	}
}

// NewDeletedEvent builds an order.deleted event; only the order id is known at that point.
func NewDeletedEvent(orderID uuid.UUID) OrderEvent {
	return OrderEvent{
		Type:       OrderDeleted,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	}
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that discards every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, OrderEvent) error {
	return nil
}
