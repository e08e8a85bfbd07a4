package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
)

// ListIncomingShipments retrieves incoming shipments by ETA
func (s *Store) ListIncomingShipments(ctx context.Context) ([]models.IncomingShipment, error) {
	shipments := []models.IncomingShipment{}
	err := s.db.SelectContext(ctx, &shipments, "SELECT * FROM incoming_shipments ORDER BY eta, id")
	return shipments, err
}

// GetIncomingShipment retrieves an incoming shipment by ID
func (s *Store) GetIncomingShipment(ctx context.Context, id string) (*models.IncomingShipment, error) {
	var shipment models.IncomingShipment
	err := s.db.GetContext(ctx, &shipment, "SELECT * FROM incoming_shipments WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("incoming shipment %s: %w", id, mapError(err))
	}
	return &shipment, nil
}

// CreateIncomingShipment inserts a shipment under the next INC-### id.
// A duplicate tracking number fails with ErrConflict.
func (s *Store) CreateIncomingShipment(ctx context.Context, shipment *models.IncomingShipment) error {
	query := `
		INSERT INTO incoming_shipments (id, supplier, eta, items, value, tracking, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`

	return s.insertWithID(ctx, incomingIDs, "", func(id string) error {
		return s.db.GetContext(ctx, shipment, query,
			id, shipment.Supplier, shipment.ETA, shipment.Items, shipment.Value, shipment.Tracking, shipment.Status)
	})
}

// UpdateIncomingShipment overwrites the mutable fields of a shipment
func (s *Store) UpdateIncomingShipment(ctx context.Context, shipment *models.IncomingShipment) error {
	query := `
		UPDATE incoming_shipments
		SET supplier = $1, eta = $2, items = $3, value = $4, tracking = $5, status = $6
		WHERE id = $7
		RETURNING *`

	err := s.db.GetContext(ctx, shipment, query,
		shipment.Supplier, shipment.ETA, shipment.Items, shipment.Value,
		shipment.Tracking, shipment.Status, shipment.ID)
	if err != nil {
		return fmt.Errorf("incoming shipment %s: %w", shipment.ID, mapError(err))
	}
	return nil
}

// DeleteIncomingShipment removes an incoming shipment
func (s *Store) DeleteIncomingShipment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM incoming_shipments WHERE id = $1", id)
	if err != nil {
		return mapDeleteError(err)
	}
	return requireAffected(res, "incoming shipment", id)
}

// ListOutgoingShipments retrieves outgoing shipments by departure
func (s *Store) ListOutgoingShipments(ctx context.Context) ([]models.OutgoingShipment, error) {
	shipments := []models.OutgoingShipment{}
	err := s.db.SelectContext(ctx, &shipments, "SELECT * FROM outgoing_shipments ORDER BY departure, id")
	return shipments, err
}

// GetOutgoingShipment retrieves an outgoing shipment by ID
func (s *Store) GetOutgoingShipment(ctx context.Context, id string) (*models.OutgoingShipment, error) {
	var shipment models.OutgoingShipment
	err := s.db.GetContext(ctx, &shipment, "SELECT * FROM outgoing_shipments WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("outgoing shipment %s: %w", id, mapError(err))
	}
	return &shipment, nil
}

// CreateOutgoingShipment inserts a shipment. An empty ID is replaced with
// the next OUT-###.
func (s *Store) CreateOutgoingShipment(ctx context.Context, shipment *models.OutgoingShipment) error {
	query := `
		INSERT INTO outgoing_shipments (id, customer, departure, destination, items, value, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`

	return s.insertWithID(ctx, outgoingIDs, shipment.ID, func(id string) error {
		return s.db.GetContext(ctx, shipment, query,
			id, shipment.Customer, shipment.Departure, shipment.Destination,
			shipment.Items, shipment.Value, shipment.Status)
	})
}

// UpdateOutgoingShipment overwrites the mutable fields of a shipment
func (s *Store) UpdateOutgoingShipment(ctx context.Context, shipment *models.OutgoingShipment) error {
	query := `
		UPDATE outgoing_shipments
		SET customer = $1, departure = $2, destination = $3, items = $4, value = $5, status = $6
		WHERE id = $7
		RETURNING *`

	err := s.db.GetContext(ctx, shipment, query,
		shipment.Customer, shipment.Departure, shipment.Destination,
		shipment.Items, shipment.Value, shipment.Status, shipment.ID)
	if err != nil {
		return fmt.Errorf("outgoing shipment %s: %w", shipment.ID, mapError(err))
	}
	return nil
}

// DeleteOutgoingShipment removes an outgoing shipment
func (s *Store) DeleteOutgoingShipment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM outgoing_shipments WHERE id = $1", id)
	if err != nil {
		return mapDeleteError(err)
	}
	return requireAffected(res, "outgoing shipment", id)
}
