package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"warehouse-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// ListProducts retrieves all products
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, mapError(err))
	}
	return &product, nil
}

// UpsertProduct inserts the product or overwrites every field of the
// existing row, and keeps products_count of the old and new zone in step.
func (s *Store) UpsertProduct(ctx context.Context, product *models.Product) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var previousZone string
		err := tx.GetContext(ctx, &previousZone, "SELECT zone FROM products WHERE id = $1 FOR UPDATE", product.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to lock product: %w", err)
		}

		query := `
			INSERT INTO products (id, name, category, zone, shelf, unit_value, quantity, min_stock, max_stock, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				zone = EXCLUDED.zone,
				shelf = EXCLUDED.shelf,
				unit_value = EXCLUDED.unit_value,
				quantity = EXCLUDED.quantity,
				min_stock = EXCLUDED.min_stock,
				max_stock = EXCLUDED.max_stock,
				last_updated = NOW()
			RETURNING *`

		err = tx.GetContext(ctx, product, query,
			product.ID, product.Name, product.Category, product.Zone, product.Shelf,
			product.UnitValue, product.Quantity, product.MinStock, product.MaxStock)
		if err != nil {
			return mapError(err)
		}

		if err := refreshProductCount(ctx, tx, product.Zone); err != nil {
			return err
		}
		if previousZone != "" && previousZone != product.Zone {
			return refreshProductCount(ctx, tx, previousZone)
		}
		return nil
	})
}

// DeleteProduct removes a product and updates its zone's product count
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var zone string
		err := tx.GetContext(ctx, &zone, "DELETE FROM products WHERE id = $1 RETURNING zone", id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
			}
			return mapDeleteError(err)
		}
		return refreshProductCount(ctx, tx, zone)
	})
}
