package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
)

// ListOrders retrieves orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY order_date DESC, id DESC")
	return orders, err
}

// GetOrder retrieves an order by ID
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, mapError(err))
	}
	return &order, nil
}

// CreateOrder inserts an order under the next ORD-### id
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, customer, status, items, value, order_date, priority)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), $7)
		RETURNING *`

	var orderDate interface{}
	if !order.OrderDate.IsZero() {
		orderDate = order.OrderDate
	}

	return s.insertWithID(ctx, orderIDs, "", func(id string) error {
		return s.db.GetContext(ctx, order, query,
			id, order.Customer, order.Status, order.Items, order.Value, orderDate, order.Priority)
	})
}

// UpdateOrder overwrites the mutable fields of an order
func (s *Store) UpdateOrder(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET customer = $1, status = $2, items = $3, value = $4, order_date = $5, priority = $6
		WHERE id = $7
		RETURNING *`

	err := s.db.GetContext(ctx, order, query,
		order.Customer, order.Status, order.Items, order.Value, order.OrderDate, order.Priority, order.ID)
	if err != nil {
		return fmt.Errorf("order %s: %w", order.ID, mapError(err))
	}
	return nil
}

// DeleteOrder removes an order
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return mapDeleteError(err)
	}
	return requireAffected(res, "order", id)
}
