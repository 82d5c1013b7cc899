package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-service/internal/events"
	"order-service/internal/model"
	"order-service/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	publisher    events.Publisher
	logger       zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// Create validates the request, checks stock for every line and persists the new order
// in a single transaction.
func (s *orderService) Create(ctx context.Context, req *model.OrderCreateRequest) (resp *model.OrderResponse, err error) {
	ctx, span := tracer().Start(ctx, "OrderService.Create")
	defer func() { endSpan(span, err) }()

	if req == nil {
		return nil, model.ErrInvalidRequest
	}

	lines, err := s.validateLines(req.CustomerID, req.Items)
	if err != nil {
		return nil, err
	}

	customer, err := s.lookupCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	span.SetAttributes(attribute.String("order.id", order.ID.String()))

	var products map[uuid.UUID]*model.Product
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		products, txErr = s.checkStock(ctx, tx, lines)
		if txErr != nil {
			return txErr
		}

		order.Items = reconcile(order.ID, nil, lines)

		if txErr = s.orderRepo.Save(ctx, tx, order); txErr != nil {
			return fmt.Errorf("failed to save order: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("customer_id", order.CustomerID.String()).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	s.publish(ctx, events.NewOrderEvent(events.OrderCreated, order))

	return Project(order, customer, products)
}

// Update replaces the customer and items of an existing order. The order row is locked for the
// duration of the transaction, and every line is checked before anything is written.
func (s *orderService) Update(ctx context.Context, req *model.OrderUpdateRequest) (resp *model.OrderResponse, err error) {
	ctx, span := tracer().Start(ctx, "OrderService.Update")
	defer func() { endSpan(span, err) }()

	if req == nil || req.ID == uuid.Nil {
		return nil, model.ErrInvalidRequest
	}
	span.SetAttributes(attribute.String("order.id", req.ID.String()))

	lines, err := s.validateLines(req.CustomerID, req.Items)
	if err != nil {
		return nil, err
	}

	var (
		order    *model.Order
		customer *model.Customer
		products map[uuid.UUID]*model.Product
	)
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		order, txErr = s.orderRepo.GetForUpdate(ctx, tx, req.ID)
		if txErr != nil {
			if errors.Is(txErr, repository.ErrNotFound) {
				s.logger.Debug().Str("order_id", req.ID.String()).Msg("order not found")
				return model.ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", txErr)
		}

		customer, txErr = s.lookupCustomer(ctx, req.CustomerID)
		if txErr != nil {
			return txErr
		}

		products, txErr = s.checkStock(ctx, tx, lines)
		if txErr != nil {
			return txErr
		}

		order.CustomerID = customer.ID
		order.Items = reconcile(order.ID, order.Items, lines)
		order.UpdatedAt = time.Now().UTC()

		if txErr = s.orderRepo.Save(ctx, tx, order); txErr != nil {
			return fmt.Errorf("failed to save order: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("customer_id", order.CustomerID.String()).
		Int("item_count", len(order.Items)).
		Msg("order updated successfully")

	s.publish(ctx, events.NewOrderEvent(events.OrderUpdated, order))

	return Project(order, customer, products)
}

// Delete removes an order. Its items are removed with it.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracer().Start(ctx, "OrderService.Delete",
		trace.WithAttributes(attribute.String("order.id", id.String())))
	defer func() { endSpan(span, err) }()

	if err = s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ErrOrderNotFound
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")

	s.publish(ctx, events.NewDeletedEvent(id))

	return nil
}

// GetAll returns every order priced against the current catalogue.
func (s *orderService) GetAll(ctx context.Context) (resp []model.OrderResponse, err error) {
	ctx, span := tracer().Start(ctx, "OrderService.GetAll")
	defer func() { endSpan(span, err) }()

	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get orders")
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	return s.projectAll(ctx, orders)
}

// GetByCustomerID returns the orders placed by a customer. An unknown customer has no orders.
func (s *orderService) GetByCustomerID(ctx context.Context, customerID uuid.UUID) (resp []model.OrderResponse, err error) {
	ctx, span := tracer().Start(ctx, "OrderService.GetByCustomerID",
		trace.WithAttributes(attribute.String("customer.id", customerID.String())))
	defer func() { endSpan(span, err) }()

	orders, err := s.orderRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to get customer orders")
		return nil, fmt.Errorf("failed to get customer orders: %w", err)
	}

	return s.projectAll(ctx, orders)
}

// GetByID returns a single order.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (resp *model.OrderResponse, err error) {
	ctx, span := tracer().Start(ctx, "OrderService.GetByID",
		trace.WithAttributes(attribute.String("order.id", id.String())))
	defer func() { endSpan(span, err) }()

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrOrderNotFound
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	projected, err := s.projectAll(ctx, []model.Order{*order})
	if err != nil {
		return nil, err
	}

	return &projected[0], nil
}

// projectAll loads the customers and products referenced by orders in two batch reads
// and projects every order.
func (s *orderService) projectAll(ctx context.Context, orders []model.Order) ([]model.OrderResponse, error) {
	resp := make([]model.OrderResponse, 0, len(orders))
	if len(orders) == 0 {
		return resp, nil
	}

	customerIDs := make([]uuid.UUID, 0, len(orders))
	seenCustomer := make(map[uuid.UUID]struct{}, len(orders))
	productIDs := make([]uuid.UUID, 0)
	seenProduct := make(map[uuid.UUID]struct{})

	for i := range orders {
		if _, ok := seenCustomer[orders[i].CustomerID]; !ok {
			seenCustomer[orders[i].CustomerID] = struct{}{}
			customerIDs = append(customerIDs, orders[i].CustomerID)
		}
		for _, id := range orders[i].ProductIDs() {
			if _, ok := seenProduct[id]; !ok {
				seenProduct[id] = struct{}{}
				productIDs = append(productIDs, id)
			}
		}
	}

	customers, err := s.customerRepo.GetByIDs(ctx, customerIDs)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(customerIDs)).Msg("failed to load customers")
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	customerByID := make(map[uuid.UUID]*model.Customer, len(customers))
	for i := range customers {
		customerByID[customers[i].ID] = &customers[i]
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(productIDs)).Msg("failed to load products")
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	productByID := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}

	for i := range orders {
		customer, ok := customerByID[orders[i].CustomerID]
		if !ok {
			s.logger.Warn().
				Str("order_id", orders[i].ID.String()).
				Str("customer_id", orders[i].CustomerID.String()).
				Msg("order references unknown customer")
			return nil, model.ErrCustomerNotFound
		}

		projected, err := Project(&orders[i], customer, productByID)
		if err != nil {
			s.logger.Warn().Err(err).Str("order_id", orders[i].ID.String()).Msg("failed to project order")
			return nil, err
		}
		resp = append(resp, *projected)
	}

	return resp, nil
}

// validateLines checks the request shape and collapses duplicate product lines.
func (s *orderService) validateLines(customerID uuid.UUID, items []model.OrderItemRequest) ([]line, error) {
	if customerID == uuid.Nil {
		s.logger.Warn().Msg("customer ID is missing")
		return nil, model.ErrInvalidRequest
	}

	if len(items) == 0 {
		return nil, model.ErrEmptyOrder
	}

	for i, item := range items {
		if item.ProductID == uuid.Nil {
			s.logger.Warn().Int("item_index", i).Msg("product ID is missing")
			return nil, model.ErrInvalidRequest
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}
	}

	lines, err := collapseLines(items)
	if err != nil {
		s.logger.Warn().Int("max_quantity", maxLineQuantity).Msg("requested quantity out of range")
		return nil, err
	}

	return lines, nil
}

func (s *orderService) lookupCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug().Str("customer_id", id.String()).Msg("customer not found")
			return nil, model.ErrCustomerNotFound
		}
		s.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to get customer")
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// checkStock reads every requested product inside tx and verifies the requested quantity.
// It returns on the first missing product or stock violation.
func (s *orderService) checkStock(ctx context.Context, tx pgx.Tx, lines []line) (map[uuid.UUID]*model.Product, error) {
	products := make(map[uuid.UUID]*model.Product, len(lines))

	for _, l := range lines {
		product, err := s.productRepo.GetForOrder(ctx, tx, l.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Debug().Str("product_id", l.ProductID.String()).Msg("product not found")
				return nil, model.ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to get product: %w", err)
		}

		if l.Quantity > product.Stock {
			s.logger.Warn().
				Str("product_id", product.ID.String()).
				Int("requested", l.Quantity).
				Int("available", product.Stock).
				Msg("insufficient stock")
			return nil, model.NewOutOfStockError(product, l.Quantity)
		}

		products[product.ID] = product
	}

	return products, nil
}

// inTx runs fn in a new transaction, committing on success and rolling back on error.
func (s *orderService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// publish emits event; delivery failures are logged and never fail the committed operation.
func (s *orderService) publish(ctx context.Context, event events.OrderEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().
			Err(err).
			Str("type", event.Type).
			Str("order_id", event.OrderID.String()).
			Msg("failed to publish order event")
	}
}
