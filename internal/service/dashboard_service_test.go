package service

import (
	"context"
	"errors"
	"testing"

	"warehouse-service/internal/models"
	"warehouse-service/internal/settings"
	"warehouse-service/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSettings struct{}

func (failingSettings) Warehouse(context.Context) (settings.Warehouse, error) {
	return settings.Warehouse{}, errors.New("db down")
}

func TestDashboardUsesThresholdSetting(t *testing.T) {
	repo := newMemStore()
	repo.products["A"] = models.Product{ID: "A", Quantity: 4}
	repo.products["B"] = models.Product{ID: "B", Quantity: 8}
	repo.products["C"] = models.Product{ID: "C", Quantity: 8, MinStock: 10}

	svc := NewDashboardService(repo, staticSettings{warehouse: settings.Warehouse{LowStockThreshold: "5"}})
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 2, stats.LowStockProducts)
}

func TestLowStockThresholdFallback(t *testing.T) {
	ctx := context.Background()
	logger := util.GetLogger()

	assert.Equal(t, 10, lowStockThreshold(ctx, failingSettings{}, logger))
	assert.Equal(t, 10, lowStockThreshold(ctx, staticSettings{warehouse: settings.Warehouse{LowStockThreshold: "many"}}, logger))
	assert.Equal(t, 25, lowStockThreshold(ctx, staticSettings{warehouse: settings.Warehouse{LowStockThreshold: "25"}}, logger))
}
