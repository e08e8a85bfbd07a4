package service

import (
	"context"
	"fmt"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ShipmentRepository is the shipment persistence ShipmentService needs
type ShipmentRepository interface {
	ListIncomingShipments(ctx context.Context) ([]models.IncomingShipment, error)
	GetIncomingShipment(ctx context.Context, id string) (*models.IncomingShipment, error)
	CreateIncomingShipment(ctx context.Context, shipment *models.IncomingShipment) error
	UpdateIncomingShipment(ctx context.Context, shipment *models.IncomingShipment) error
	DeleteIncomingShipment(ctx context.Context, id string) error

	ListOutgoingShipments(ctx context.Context) ([]models.OutgoingShipment, error)
	GetOutgoingShipment(ctx context.Context, id string) (*models.OutgoingShipment, error)
	CreateOutgoingShipment(ctx context.Context, shipment *models.OutgoingShipment) error
	UpdateOutgoingShipment(ctx context.Context, shipment *models.OutgoingShipment) error
	DeleteOutgoingShipment(ctx context.Context, id string) error
}

// ShipmentService handles incoming and outgoing shipments
type ShipmentService struct {
	repo           ShipmentRepository
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewShipmentService creates a new shipment service
func NewShipmentService(repo ShipmentRepository, eventPublisher *broker.EventPublisher) *ShipmentService {
	return &ShipmentService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// IncomingShipmentRequest creates or updates an incoming shipment. On
// update, empty or nil fields keep their stored value.
type IncomingShipmentRequest struct {
	Supplier string           `json:"supplier"`
	ETA      string           `json:"eta"`
	Items    *int             `json:"items"`
	Value    *decimal.Decimal `json:"value"`
	Tracking string           `json:"tracking"`
	Status   string           `json:"status"`
}

func (r IncomingShipmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Supplier, validation.Length(0, 255)),
		validation.Field(&r.ETA, dateRule),
		validation.Field(&r.Items, validation.Min(0)),
		validation.Field(&r.Value, nonNegative),
		validation.Field(&r.Tracking, validation.Length(0, 100)),
		validation.Field(&r.Status, validation.Length(0, 50)),
	)
}

func (r IncomingShipmentRequest) validateCreate() error {
	if err := validate(r); err != nil {
		return err
	}
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Supplier, validation.Required),
		validation.Field(&r.ETA, validation.Required),
		validation.Field(&r.Tracking, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return nil
}

// OutgoingShipmentRequest creates or updates an outgoing shipment. ID is
// honoured on create only; without it an OUT-### id is assigned.
type OutgoingShipmentRequest struct {
	ID          string           `json:"id"`
	Customer    string           `json:"customer"`
	Departure   string           `json:"departure"`
	Destination string           `json:"destination"`
	Items       *int             `json:"items"`
	Value       *decimal.Decimal `json:"value"`
	Status      string           `json:"status"`
}

func (r OutgoingShipmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Length(0, 20)),
		validation.Field(&r.Customer, validation.Length(0, 255)),
		validation.Field(&r.Departure, dateRule),
		validation.Field(&r.Destination, validation.Length(0, 255)),
		validation.Field(&r.Items, validation.Min(0)),
		validation.Field(&r.Value, nonNegative),
		validation.Field(&r.Status, validation.Length(0, 50)),
	)
}

func (r OutgoingShipmentRequest) validateCreate() error {
	if err := validate(r); err != nil {
		return err
	}
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Customer, validation.Required),
		validation.Field(&r.Departure, validation.Required),
		validation.Field(&r.Destination, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return nil
}

// ListIncoming returns every incoming shipment
func (s *ShipmentService) ListIncoming(ctx context.Context) ([]models.IncomingShipment, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.ListIncoming")
	defer span.End()

	return s.repo.ListIncomingShipments(ctx)
}

// CreateIncoming records an incoming shipment. A tracking number already in
// use fails with ErrConflict.
func (s *ShipmentService) CreateIncoming(ctx context.Context, req *IncomingShipmentRequest) (*models.IncomingShipment, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.CreateIncoming")
	defer span.End()

	if err := req.validateCreate(); err != nil {
		return nil, err
	}
	eta, err := parseDate("eta", req.ETA)
	if err != nil {
		return nil, err
	}

	shipment := &models.IncomingShipment{
		Supplier: req.Supplier,
		ETA:      eta,
		Value:    orZero(req.Value),
		Tracking: req.Tracking,
		Status:   orDefault(req.Status, models.ShipmentStatusPending),
	}
	if req.Items != nil {
		shipment.Items = *req.Items
	}

	if err := s.repo.CreateIncomingShipment(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to create incoming shipment: %w", err)
	}

	util.EntitiesCreatedTotal.WithLabelValues("incoming_shipment").Inc()
	s.logger.Info("Incoming shipment created",
		zap.String("shipment_id", shipment.ID),
		zap.String("tracking", shipment.Tracking))
	return shipment, nil
}

// UpdateIncoming merges the request into the stored shipment
func (s *ShipmentService) UpdateIncoming(ctx context.Context, id string, req *IncomingShipmentRequest) (*models.IncomingShipment, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.UpdateIncoming")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	shipment, err := s.repo.GetIncomingShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	previousStatus := shipment.Status

	if req.Supplier != "" {
		shipment.Supplier = req.Supplier
	}
	if req.ETA != "" {
		if shipment.ETA, err = parseDate("eta", req.ETA); err != nil {
			return nil, err
		}
	}
	if req.Items != nil {
		shipment.Items = *req.Items
	}
	if req.Value != nil {
		shipment.Value = *req.Value
	}
	if req.Tracking != "" {
		shipment.Tracking = req.Tracking
	}
	if req.Status != "" {
		shipment.Status = req.Status
	}

	if err := s.repo.UpdateIncomingShipment(ctx, shipment); err != nil {
		return nil, err
	}

	s.statusChanged(ctx, shipment.ID, models.DirectionIncoming, previousStatus, shipment.Status)
	return shipment, nil
}

// DeleteIncoming removes an incoming shipment
func (s *ShipmentService) DeleteIncoming(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "ShipmentService.DeleteIncoming")
	defer span.End()

	return s.repo.DeleteIncomingShipment(ctx, id)
}

// ListOutgoing returns every outgoing shipment
func (s *ShipmentService) ListOutgoing(ctx context.Context) ([]models.OutgoingShipment, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.ListOutgoing")
	defer span.End()

	return s.repo.ListOutgoingShipments(ctx)
}

// CreateOutgoing records an outgoing shipment
func (s *ShipmentService) CreateOutgoing(ctx context.Context, req *OutgoingShipmentRequest) (*models.OutgoingShipment, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.CreateOutgoing")
	defer span.End()

	if err := req.validateCreate(); err != nil {
		return nil, err
	}
	departure, err := parseDate("departure", req.Departure)
	if err != nil {
		return nil, err
	}

	shipment := &models.OutgoingShipment{
		ID:          req.ID,
		Customer:    req.Customer,
		Departure:   departure,
		Destination: req.Destination,
		Value:       orZero(req.Value),
		Status:      orDefault(req.Status, models.ShipmentStatusPending),
	}
	if req.Items != nil {
		shipment.Items = *req.Items
	}

	if err := s.repo.CreateOutgoingShipment(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to create outgoing shipment: %w", err)
	}

	util.EntitiesCreatedTotal.WithLabelValues("outgoing_shipment").Inc()
	s.logger.Info("Outgoing shipment created", zap.String("shipment_id", shipment.ID))
	return shipment, nil
}

// UpdateOutgoing merges the request into the stored shipment
func (s *ShipmentService) UpdateOutgoing(ctx context.Context, id string, req *OutgoingShipmentRequest) (*models.OutgoingShipment, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.UpdateOutgoing")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	shipment, err := s.repo.GetOutgoingShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	previousStatus := shipment.Status

	if req.Customer != "" {
		shipment.Customer = req.Customer
	}
	if req.Departure != "" {
		if shipment.Departure, err = parseDate("departure", req.Departure); err != nil {
			return nil, err
		}
	}
	if req.Destination != "" {
		shipment.Destination = req.Destination
	}
	if req.Items != nil {
		shipment.Items = *req.Items
	}
	if req.Value != nil {
		shipment.Value = *req.Value
	}
	if req.Status != "" {
		shipment.Status = req.Status
	}

	if err := s.repo.UpdateOutgoingShipment(ctx, shipment); err != nil {
		return nil, err
	}

	s.statusChanged(ctx, shipment.ID, models.DirectionOutgoing, previousStatus, shipment.Status)
	return shipment, nil
}

// DeleteOutgoing removes an outgoing shipment
func (s *ShipmentService) DeleteOutgoing(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "ShipmentService.DeleteOutgoing")
	defer span.End()

	return s.repo.DeleteOutgoingShipment(ctx, id)
}

func (s *ShipmentService) statusChanged(ctx context.Context, id, direction, previous, current string) {
	if previous == current {
		return
	}

	s.logger.Info("Shipment status changed",
		zap.String("shipment_id", id),
		zap.String("direction", direction),
		zap.String("from", previous),
		zap.String("to", current))

	event := &models.ShipmentStatusChangedEvent{
		ShipmentID:     id,
		Direction:      direction,
		PreviousStatus: previous,
		Status:         current,
	}
	if err := s.eventPublisher.PublishShipmentStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish ShipmentStatusChanged event", zap.Error(err))
	}
}
