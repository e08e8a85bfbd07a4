package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
)

// DashboardStats aggregates the landing page counters in one round trip.
// lowStockThreshold applies to products whose min_stock is 0.
func (s *Store) DashboardStats(ctx context.Context, lowStockThreshold int) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products) AS total_products,
			(SELECT COUNT(*) FROM warehouse_zones) AS total_zones,
			(SELECT COUNT(*) FROM products
			  WHERE quantity <= CASE WHEN min_stock > 0 THEN min_stock ELSE $1 END) AS low_stock_products,
			(SELECT COUNT(*) FROM orders WHERE status = $2) AS pending_orders,
			(SELECT COUNT(*) FROM incoming_shipments WHERE status <> $3) AS incoming_open,
			(SELECT COUNT(*) FROM outgoing_shipments WHERE status <> $4) AS outgoing_open,
			(SELECT COALESCE(ROUND(AVG(capacity * 100.0 / NULLIF(max_capacity, 0)), 2), 0)
			   FROM warehouse_zones) AS zone_utilization,
			(SELECT COALESCE(ROUND(AVG(accuracy), 2), 0) FROM inventory_audits) AS audit_accuracy,
			(SELECT COALESCE(SUM(quantity * unit_value), 0) FROM products) AS total_inventory_value`

	var stats models.DashboardStats
	err := s.db.GetContext(ctx, &stats, query,
		lowStockThreshold, models.OrderStatusPending,
		models.IncomingStatusReceived, models.OutgoingStatusDelivered)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate dashboard stats: %w", err)
	}
	return &stats, nil
}
