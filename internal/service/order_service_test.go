package service

import (
	"context"
	"testing"
	"time"

	"warehouse-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderDefaults(t *testing.T) {
	pub, sink := newPublisher()
	svc := NewOrderService(newMemStore(), pub)

	order, err := svc.CreateOrder(context.Background(), &OrderRequest{Customer: "Acme", Items: intPtr(3)})
	require.NoError(t, err)

	assert.Equal(t, "ORD-001", order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.OrderPriorityLow, order.Priority)
	assert.Equal(t, 3, order.Items)
	assert.False(t, order.OrderDate.IsZero())

	require.Len(t, sink.events, 1)
	event := sink.events[0].(*models.OrderCreatedEvent)
	assert.Equal(t, "ORD-001", event.OrderID)
}

func TestCreateOrderRequiresCustomer(t *testing.T) {
	pub, _ := newPublisher()
	svc := NewOrderService(newMemStore(), pub)

	_, err := svc.CreateOrder(context.Background(), &OrderRequest{})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateOrder(context.Background(), &OrderRequest{Customer: "Acme", OrderDate: "yesterday"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateOrderMerges(t *testing.T) {
	pub, _ := newPublisher()
	svc := NewOrderService(newMemStore(), pub)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &OrderRequest{Customer: "Acme", Priority: "High"})
	require.NoError(t, err)

	updated, err := svc.UpdateOrder(ctx, order.ID, &OrderRequest{Status: "Shipped", OrderDate: "2026-01-02"})
	require.NoError(t, err)
	assert.Equal(t, "Shipped", updated.Status)
	assert.Equal(t, "High", updated.Priority)
	assert.Equal(t, "Acme", updated.Customer)
	assert.True(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC).Equal(updated.OrderDate))

	_, err = svc.UpdateOrder(ctx, "ORD-999", &OrderRequest{Status: "Shipped"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestParseDateLayouts(t *testing.T) {
	for _, raw := range []string{"2026-05-01", "2026-05-01T10:00:00Z", "2026-05-01T10:00:00", "2026-05-01 10:00:00"} {
		_, err := parseDate("d", raw)
		assert.NoError(t, err, raw)
	}

	_, err := parseDate("d", "05/01/2026")
	assert.ErrorIs(t, err, models.ErrValidation)
}
