package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// ListZones retrieves all warehouse zones
func (s *Store) ListZones(ctx context.Context) ([]models.WarehouseZone, error) {
	zones := []models.WarehouseZone{}
	err := s.db.SelectContext(ctx, &zones, "SELECT * FROM warehouse_zones ORDER BY id")
	return zones, err
}

// GetZone retrieves a zone by ID
func (s *Store) GetZone(ctx context.Context, id string) (*models.WarehouseZone, error) {
	var zone models.WarehouseZone
	err := s.db.GetContext(ctx, &zone, "SELECT * FROM warehouse_zones WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("zone %s: %w", id, mapError(err))
	}
	return &zone, nil
}

// CreateZone inserts a zone. An empty ID is replaced with the next ZONE-###.
func (s *Store) CreateZone(ctx context.Context, zone *models.WarehouseZone) error {
	query := `
		INSERT INTO warehouse_zones (id, name, capacity, max_capacity, temperature, humidity, status, products_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
		RETURNING *`

	return s.insertWithID(ctx, zoneIDs, zone.ID, func(id string) error {
		return s.db.GetContext(ctx, zone, query,
			id, zone.Name, zone.Capacity, zone.MaxCapacity, zone.Temperature, zone.Humidity, zone.Status)
	})
}

// UpdateZone locks the zone row, lets mutate change it and writes the
// result back in the same transaction. mutate returning an error aborts the
// update. Every zone change, including stock deltas, goes through here.
func (s *Store) UpdateZone(ctx context.Context, id string, mutate func(*models.WarehouseZone) error) (*models.WarehouseZone, error) {
	var updated models.WarehouseZone

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var zone models.WarehouseZone
		err := tx.GetContext(ctx, &zone, "SELECT * FROM warehouse_zones WHERE id = $1 FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("zone %s: %w", id, mapError(err))
		}

		if err := mutate(&zone); err != nil {
			return err
		}

		query := `
			UPDATE warehouse_zones
			SET name = $1, capacity = $2, max_capacity = $3, temperature = $4, humidity = $5, status = $6
			WHERE id = $7
			RETURNING *`

		err = tx.GetContext(ctx, &updated, query,
			zone.Name, zone.Capacity, zone.MaxCapacity, zone.Temperature, zone.Humidity, zone.Status, id)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ZoneReferenceCount returns how many products and audits point at the zone
func (s *Store) ZoneReferenceCount(ctx context.Context, id string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `
		SELECT (SELECT COUNT(*) FROM products WHERE zone = $1)
		     + (SELECT COUNT(*) FROM inventory_audits WHERE zone = $1)`, id)
	return n, err
}

// DeleteZone removes a zone that nothing references
func (s *Store) DeleteZone(ctx context.Context, id string) error {
	refs, err := s.ZoneReferenceCount(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check zone references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: zone %s is referenced by %d products or audits", models.ErrConflict, id, refs)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM warehouse_zones WHERE id = $1", id)
	if err != nil {
		// The FK still guards a reference added after the check above.
		return mapDeleteError(err)
	}
	return requireAffected(res, "zone", id)
}

// refreshProductCount recomputes products_count for one zone
func refreshProductCount(ctx context.Context, tx *sqlx.Tx, zoneID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE warehouse_zones
		SET products_count = (SELECT COUNT(*) FROM products WHERE zone = $1)
		WHERE id = $1`, zoneID)
	if err != nil {
		return fmt.Errorf("failed to refresh product count for zone %s: %w", zoneID, err)
	}
	return nil
}
