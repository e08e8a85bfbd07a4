package service

import (
	"context"

	"warehouse-service/internal/models"
	"warehouse-service/internal/settings"
	"warehouse-service/internal/util"

	"go.uber.org/zap"
)

// DashboardRepository aggregates the landing page counters
type DashboardRepository interface {
	DashboardStats(ctx context.Context, lowStockThreshold int) (*models.DashboardStats, error)
}

// WarehouseSettings reads the warehouse settings group
type WarehouseSettings interface {
	Warehouse(ctx context.Context) (settings.Warehouse, error)
}

// DashboardService builds the landing page summary
type DashboardService struct {
	repo     DashboardRepository
	settings WarehouseSettings
	logger   *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repo DashboardRepository, settings WarehouseSettings) *DashboardService {
	return &DashboardService{
		repo:     repo,
		settings: settings,
		logger:   util.GetLogger(),
	}
}

// Stats returns the dashboard counters
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Stats")
	defer span.End()

	return s.repo.DashboardStats(ctx, lowStockThreshold(ctx, s.settings, s.logger))
}

func lowStockThreshold(ctx context.Context, src WarehouseSettings, logger *zap.Logger) int {
	w, err := src.Warehouse(ctx)
	if err != nil {
		logger.Warn("Failed to read warehouse settings, using default threshold", zap.Error(err))
		return settings.DefaultLowStockThreshold
	}
	return w.LowStockThresholdOrDefault()
}
