package service

import (
	"context"
	"testing"

	"warehouse-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func newZoneService() (*ZoneService, *memStore, *recordingSink) {
	repo := newMemStore()
	pub, sink := newPublisher()
	return NewZoneService(repo, pub), repo, sink
}

func TestCreateZoneDefaults(t *testing.T) {
	svc, _, _ := newZoneService()

	zone, err := svc.CreateZone(context.Background(), &CreateZoneRequest{
		ID: "Z1", Name: "Cold", MaxCapacity: intPtr(100),
	})
	require.NoError(t, err)

	assert.Equal(t, "Z1", zone.ID)
	assert.Equal(t, 0, zone.Capacity)
	assert.Equal(t, 0, zone.ProductsCount)
	assert.Equal(t, models.ZoneStatusNormal, zone.Status)
}

func TestCreateZoneValidation(t *testing.T) {
	svc, _, _ := newZoneService()
	ctx := context.Background()

	_, err := svc.CreateZone(ctx, &CreateZoneRequest{Name: "NoMax"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateZone(ctx, &CreateZoneRequest{MaxCapacity: intPtr(10)})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateZone(ctx, &CreateZoneRequest{Name: "Over", Capacity: 20, MaxCapacity: intPtr(10)})
	assert.ErrorIs(t, err, models.ErrCapacityExceeded)
}

func TestAdjustStock(t *testing.T) {
	svc, repo, sink := newZoneService()
	ctx := context.Background()

	_, err := svc.CreateZone(ctx, &CreateZoneRequest{ID: "Z1", Name: "Cold", MaxCapacity: intPtr(100)})
	require.NoError(t, err)

	zone, err := svc.AdjustStock(ctx, "Z1", &StockRequest{Delta: intPtr(60)})
	require.NoError(t, err)
	assert.Equal(t, 60, zone.Capacity)

	_, err = svc.AdjustStock(ctx, "Z1", &StockRequest{Delta: intPtr(41)})
	assert.ErrorIs(t, err, models.ErrCapacityExceeded)

	_, err = svc.AdjustStock(ctx, "Z1", &StockRequest{Delta: intPtr(-61)})
	assert.ErrorIs(t, err, models.ErrCapacityExceeded)

	assert.Equal(t, 60, repo.zones["Z1"].Capacity)

	require.Len(t, sink.events, 1)
	event, ok := sink.events[0].(*models.ZoneStockChangedEvent)
	require.True(t, ok)
	assert.Equal(t, 60, event.Capacity)
	assert.Equal(t, models.EventTypeZoneStockChanged, event.EventType)
}

func TestAdjustStockRequiresDelta(t *testing.T) {
	svc, _, _ := newZoneService()

	_, err := svc.AdjustStock(context.Background(), "Z1", &StockRequest{})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAdjustStockUnknownZone(t *testing.T) {
	svc, _, _ := newZoneService()

	_, err := svc.AdjustStock(context.Background(), "nope", &StockRequest{Delta: intPtr(1)})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateZoneKeepsInvariant(t *testing.T) {
	svc, _, _ := newZoneService()
	ctx := context.Background()

	_, err := svc.CreateZone(ctx, &CreateZoneRequest{ID: "Z1", Name: "Cold", Capacity: 50, MaxCapacity: intPtr(100)})
	require.NoError(t, err)

	_, err = svc.UpdateZone(ctx, "Z1", &UpdateZoneRequest{MaxCapacity: intPtr(40)})
	assert.ErrorIs(t, err, models.ErrCapacityExceeded)

	zone, err := svc.UpdateZone(ctx, "Z1", &UpdateZoneRequest{Status: strPtr("Critical")})
	require.NoError(t, err)
	assert.Equal(t, "Critical", zone.Status)
	assert.Equal(t, 100, zone.MaxCapacity)
	assert.Equal(t, "Cold", zone.Name)
}

func TestDeleteReferencedZone(t *testing.T) {
	svc, repo, _ := newZoneService()
	ctx := context.Background()

	_, err := svc.CreateZone(ctx, &CreateZoneRequest{ID: "Z1", Name: "Cold", MaxCapacity: intPtr(100)})
	require.NoError(t, err)
	repo.products["P1"] = models.Product{ID: "P1", Zone: "Z1"}

	assert.ErrorIs(t, svc.DeleteZone(ctx, "Z1"), models.ErrConflict)
	assert.Contains(t, repo.zones, "Z1")
}
