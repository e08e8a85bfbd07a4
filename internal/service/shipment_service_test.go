package service

import (
	"context"
	"testing"

	"warehouse-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIncomingDuplicateTracking(t *testing.T) {
	repo := newMemStore()
	pub, _ := newPublisher()
	svc := NewShipmentService(repo, pub)
	ctx := context.Background()

	first, err := svc.CreateIncoming(ctx, &IncomingShipmentRequest{Supplier: "Acme", ETA: "2026-02-01", Tracking: "TRK-1"})
	require.NoError(t, err)
	assert.Equal(t, "INC-001", first.ID)
	assert.Equal(t, models.ShipmentStatusPending, first.Status)

	_, err = svc.CreateIncoming(ctx, &IncomingShipmentRequest{Supplier: "Other", ETA: "2026-02-02", Tracking: "TRK-1"})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Len(t, repo.incoming, 1)
}

func TestCreateIncomingValidation(t *testing.T) {
	pub, _ := newPublisher()
	svc := NewShipmentService(newMemStore(), pub)

	_, err := svc.CreateIncoming(context.Background(), &IncomingShipmentRequest{Supplier: "Acme", ETA: "2026-02-01"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateIncoming(context.Background(), &IncomingShipmentRequest{Supplier: "Acme", ETA: "soon", Tracking: "T"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestOutgoingGetsGeneratedID(t *testing.T) {
	pub, _ := newPublisher()
	svc := NewShipmentService(newMemStore(), pub)
	ctx := context.Background()

	value := decimal.NewFromInt(250)
	s, err := svc.CreateOutgoing(ctx, &OutgoingShipmentRequest{
		Customer: "Shop", Departure: "2026-03-01T08:00:00Z", Destination: "Oslo", Value: &value,
	})
	require.NoError(t, err)
	assert.Equal(t, "OUT-001", s.ID)

	s, err = svc.CreateOutgoing(ctx, &OutgoingShipmentRequest{
		ID: "CUSTOM-1", Customer: "Shop", Departure: "2026-03-01", Destination: "Oslo",
	})
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM-1", s.ID)
}

func TestStatusChangePublishesOnce(t *testing.T) {
	pub, sink := newPublisher()
	svc := NewShipmentService(newMemStore(), pub)
	ctx := context.Background()

	s, err := svc.CreateIncoming(ctx, &IncomingShipmentRequest{Supplier: "Acme", ETA: "2026-02-01", Tracking: "TRK-1"})
	require.NoError(t, err)

	_, err = svc.UpdateIncoming(ctx, s.ID, &IncomingShipmentRequest{Items: intPtr(4)})
	require.NoError(t, err)
	assert.Empty(t, sink.events)

	updated, err := svc.UpdateIncoming(ctx, s.ID, &IncomingShipmentRequest{Status: "Received"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Items)

	require.Len(t, sink.events, 1)
	event := sink.events[0].(*models.ShipmentStatusChangedEvent)
	assert.Equal(t, "Pending", event.PreviousStatus)
	assert.Equal(t, "Received", event.Status)
	assert.Equal(t, models.DirectionIncoming, event.Direction)
}
