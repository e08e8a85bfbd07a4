package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
)

// ListAudits retrieves audits, newest schedule first. limit <= 0 means all.
func (s *Store) ListAudits(ctx context.Context, limit int) ([]models.InventoryAudit, error) {
	audits := []models.InventoryAudit{}
	query := "SELECT * FROM inventory_audits ORDER BY scheduled_date DESC, id DESC"
	if limit > 0 {
		err := s.db.SelectContext(ctx, &audits, query+" LIMIT $1", limit)
		return audits, err
	}
	err := s.db.SelectContext(ctx, &audits, query)
	return audits, err
}

// GetAudit retrieves an audit by ID
func (s *Store) GetAudit(ctx context.Context, id string) (*models.InventoryAudit, error) {
	var audit models.InventoryAudit
	err := s.db.GetContext(ctx, &audit, "SELECT * FROM inventory_audits WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", id, mapError(err))
	}
	return &audit, nil
}

// CreateAudit inserts an audit under the next AUD-### id
func (s *Store) CreateAudit(ctx context.Context, audit *models.InventoryAudit) error {
	query := `
		INSERT INTO inventory_audits (id, zone, scheduled_date, auditor, audit_type, status, discrepancies, accuracy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *`

	return s.insertWithID(ctx, auditIDs, "", func(id string) error {
		return s.db.GetContext(ctx, audit, query,
			id, audit.Zone, audit.ScheduledDate, audit.Auditor, audit.AuditType,
			audit.Status, audit.Discrepancies, audit.Accuracy)
	})
}

// UpdateAudit overwrites the mutable fields of an audit
func (s *Store) UpdateAudit(ctx context.Context, audit *models.InventoryAudit) error {
	query := `
		UPDATE inventory_audits
		SET zone = $1, scheduled_date = $2, auditor = $3, audit_type = $4,
		    status = $5, discrepancies = $6, accuracy = $7
		WHERE id = $8
		RETURNING *`

	err := s.db.GetContext(ctx, audit, query,
		audit.Zone, audit.ScheduledDate, audit.Auditor, audit.AuditType,
		audit.Status, audit.Discrepancies, audit.Accuracy, audit.ID)
	if err != nil {
		return fmt.Errorf("audit %s: %w", audit.ID, mapError(err))
	}
	return nil
}

// DeleteAudit removes an audit
func (s *Store) DeleteAudit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM inventory_audits WHERE id = $1", id)
	if err != nil {
		return mapDeleteError(err)
	}
	return requireAffected(res, "audit", id)
}
