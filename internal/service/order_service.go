package service

import (
	"context"
	"fmt"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderRepository is the order persistence OrderService needs
type OrderRepository interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, id string) error
}

// OrderService handles order business logic
type OrderService struct {
	repo           OrderRepository
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repo OrderRepository, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// OrderRequest creates or updates an order. On update, empty or nil fields
// keep their stored value.
type OrderRequest struct {
	Customer  string           `json:"customer"`
	Status    string           `json:"status"`
	Items     *int             `json:"items"`
	Value     *decimal.Decimal `json:"value"`
	OrderDate string           `json:"order_date"`
	Priority  string           `json:"priority"`
}

func (r OrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Customer, validation.Length(0, 255)),
		validation.Field(&r.Status, validation.Length(0, 50)),
		validation.Field(&r.Items, validation.Min(0)),
		validation.Field(&r.Value, nonNegative),
		validation.Field(&r.OrderDate, dateRule),
		validation.Field(&r.Priority, validation.Length(0, 20)),
	)
}

// ListOrders returns every order, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	return s.repo.ListOrders(ctx)
}

// GetOrder returns one order
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	return s.repo.GetOrder(ctx, id)
}

// CreateOrder records an order with status Pending and priority Low unless
// the request says otherwise. A missing order_date means now.
func (s *OrderService) CreateOrder(ctx context.Context, req *OrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}
	if err := validation.Validate(req.Customer, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: customer: %v", models.ErrValidation, err)
	}

	order := &models.Order{
		Customer: req.Customer,
		Status:   orDefault(req.Status, models.OrderStatusPending),
		Value:    orZero(req.Value),
		Priority: orDefault(req.Priority, models.OrderPriorityLow),
	}
	if req.Items != nil {
		order.Items = *req.Items
	}
	if req.OrderDate != "" {
		date, err := parseDate("order_date", req.OrderDate)
		if err != nil {
			return nil, err
		}
		order.OrderDate = date
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.EntitiesCreatedTotal.WithLabelValues("order").Inc()
	s.logger.Info("Order created", zap.String("order_id", order.ID), zap.String("customer", order.Customer))

	event := &models.OrderCreatedEvent{
		OrderID:  order.ID,
		Customer: order.Customer,
		Value:    order.Value,
		Priority: order.Priority,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// UpdateOrder merges the request into the stored order
func (s *OrderService) UpdateOrder(ctx context.Context, id string, req *OrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrder")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Customer != "" {
		order.Customer = req.Customer
	}
	if req.Status != "" {
		order.Status = req.Status
	}
	if req.Items != nil {
		order.Items = *req.Items
	}
	if req.Value != nil {
		order.Value = *req.Value
	}
	if req.OrderDate != "" {
		if order.OrderDate, err = parseDate("order_date", req.OrderDate); err != nil {
			return nil, err
		}
	}
	if req.Priority != "" {
		order.Priority = req.Priority
	}

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("Order updated", zap.String("order_id", order.ID), zap.String("status", order.Status))
	return order, nil
}

// DeleteOrder removes an order
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder")
	defer span.End()

	return s.repo.DeleteOrder(ctx, id)
}
