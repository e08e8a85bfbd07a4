package service

import (
	"context"
	"errors"
	"fmt"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// ZoneRepository is the zone persistence ZoneService needs
type ZoneRepository interface {
	ListZones(ctx context.Context) ([]models.WarehouseZone, error)
	GetZone(ctx context.Context, id string) (*models.WarehouseZone, error)
	CreateZone(ctx context.Context, zone *models.WarehouseZone) error
	UpdateZone(ctx context.Context, id string, mutate func(*models.WarehouseZone) error) (*models.WarehouseZone, error)
	DeleteZone(ctx context.Context, id string) error
}

// ZoneService handles warehouse zones and their stock level
type ZoneService struct {
	repo           ZoneRepository
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewZoneService creates a new zone service
func NewZoneService(repo ZoneRepository, eventPublisher *broker.EventPublisher) *ZoneService {
	return &ZoneService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateZoneRequest represents a request to add a zone
type CreateZoneRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Capacity    int      `json:"capacity"`
	MaxCapacity *int     `json:"max_capacity"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Status      string   `json:"status"`
}

func (r CreateZoneRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Length(0, 50)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.MaxCapacity, validation.NotNil, validation.Min(1)),
		validation.Field(&r.Capacity, validation.Min(0)),
		validation.Field(&r.Status, validation.Length(0, 50)),
	)
}

// UpdateZoneRequest carries the fields a PUT or PATCH may change. Nil
// fields keep their stored value.
type UpdateZoneRequest struct {
	Name        *string  `json:"name"`
	Capacity    *int     `json:"capacity"`
	MaxCapacity *int     `json:"max_capacity"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Status      *string  `json:"status"`
}

func (r UpdateZoneRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Capacity, validation.Min(0)),
		validation.Field(&r.MaxCapacity, validation.Min(1)),
		validation.Field(&r.Status, validation.Length(0, 50)),
	)
}

// StockRequest moves units into (positive) or out of (negative) a zone
type StockRequest struct {
	Delta *int `json:"delta"`
}

func (r StockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Delta, validation.NotNil),
	)
}

// ListZones returns every zone
func (s *ZoneService) ListZones(ctx context.Context) ([]models.WarehouseZone, error) {
	ctx, span := util.StartSpan(ctx, "ZoneService.ListZones")
	defer span.End()

	return s.repo.ListZones(ctx)
}

// GetZone returns one zone
func (s *ZoneService) GetZone(ctx context.Context, id string) (*models.WarehouseZone, error) {
	ctx, span := util.StartSpan(ctx, "ZoneService.GetZone")
	defer span.End()

	return s.repo.GetZone(ctx, id)
}

// CreateZone adds a zone. Status defaults to Normal and products_count
// always starts at 0.
func (s *ZoneService) CreateZone(ctx context.Context, req *CreateZoneRequest) (*models.WarehouseZone, error) {
	ctx, span := util.StartSpan(ctx, "ZoneService.CreateZone")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	zone := &models.WarehouseZone{
		ID:          req.ID,
		Name:        req.Name,
		Capacity:    req.Capacity,
		MaxCapacity: *req.MaxCapacity,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		Status:      orDefault(req.Status, models.ZoneStatusNormal),
	}
	if err := zone.ValidateCapacity(); err != nil {
		util.ZoneCapacityRejectionsTotal.Inc()
		return nil, err
	}

	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}

	util.EntitiesCreatedTotal.WithLabelValues("zone").Inc()
	s.logger.Info("Zone created", zap.String("zone_id", zone.ID), zap.Int("max_capacity", zone.MaxCapacity))
	return zone, nil
}

// UpdateZone applies the non-nil request fields. The capacity invariant is
// checked against the merged result.
func (s *ZoneService) UpdateZone(ctx context.Context, id string, req *UpdateZoneRequest) (*models.WarehouseZone, error) {
	ctx, span := util.StartSpan(ctx, "ZoneService.UpdateZone")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	zone, err := s.repo.UpdateZone(ctx, id, func(z *models.WarehouseZone) error {
		if req.Name != nil {
			z.Name = *req.Name
		}
		if req.Capacity != nil {
			z.Capacity = *req.Capacity
		}
		if req.MaxCapacity != nil {
			z.MaxCapacity = *req.MaxCapacity
		}
		if req.Temperature != nil {
			z.Temperature = req.Temperature
		}
		if req.Humidity != nil {
			z.Humidity = req.Humidity
		}
		if req.Status != nil {
			z.Status = *req.Status
		}
		return z.ValidateCapacity()
	})
	if err != nil {
		if errors.Is(err, models.ErrCapacityExceeded) {
			util.ZoneCapacityRejectionsTotal.Inc()
		}
		return nil, err
	}

	s.logger.Info("Zone updated", zap.String("zone_id", id))
	return zone, nil
}

// AdjustStock applies a stock delta under a row lock. A delta that would
// push capacity below 0 or above max_capacity fails with
// ErrCapacityExceeded and changes nothing.
func (s *ZoneService) AdjustStock(ctx context.Context, id string, req *StockRequest) (*models.WarehouseZone, error) {
	ctx, span := util.StartSpan(ctx, "ZoneService.AdjustStock")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}
	delta := *req.Delta

	zone, err := s.repo.UpdateZone(ctx, id, func(z *models.WarehouseZone) error {
		next, err := z.ApplyDelta(delta)
		if err != nil {
			return err
		}
		*z = next
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrCapacityExceeded) {
			util.ZoneCapacityRejectionsTotal.Inc()
			s.logger.Warn("Zone stock change rejected",
				zap.String("zone_id", id),
				zap.Int("delta", delta))
		}
		return nil, err
	}

	util.ZoneStockAdjustmentsTotal.Inc()
	s.logger.Info("Zone stock adjusted",
		zap.String("zone_id", id),
		zap.Int("delta", delta),
		zap.Int("capacity", zone.Capacity))

	event := &models.ZoneStockChangedEvent{
		ZoneID:      zone.ID,
		ZoneName:    zone.Name,
		Delta:       delta,
		Capacity:    zone.Capacity,
		MaxCapacity: zone.MaxCapacity,
	}
	if err := s.eventPublisher.PublishZoneStockChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish ZoneStockChanged event", zap.Error(err))
	}

	return zone, nil
}

// DeleteZone removes a zone no product or audit refers to
func (s *ZoneService) DeleteZone(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "ZoneService.DeleteZone")
	defer span.End()

	if err := s.repo.DeleteZone(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Zone deleted", zap.String("zone_id", id))
	return nil
}
