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

// AuditRepository is the audit persistence AuditService needs
type AuditRepository interface {
	ListAudits(ctx context.Context, limit int) ([]models.InventoryAudit, error)
	GetAudit(ctx context.Context, id string) (*models.InventoryAudit, error)
	CreateAudit(ctx context.Context, audit *models.InventoryAudit) error
	UpdateAudit(ctx context.Context, audit *models.InventoryAudit) error
	DeleteAudit(ctx context.Context, id string) error
}

// AuditService handles inventory audits
type AuditService struct {
	repo           AuditRepository
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditRepository, eventPublisher *broker.EventPublisher) *AuditService {
	return &AuditService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// AuditRequest creates or updates an audit. On update, empty or nil fields
// keep their stored value.
type AuditRequest struct {
	Zone          string           `json:"zone"`
	ScheduledDate string           `json:"scheduled_date"`
	Auditor       string           `json:"auditor"`
	AuditType     string           `json:"audit_type"`
	Status        string           `json:"status"`
	Discrepancies *int             `json:"discrepancies"`
	Accuracy      *decimal.Decimal `json:"accuracy"`
}

var hundred = decimal.NewFromInt(100)

func (r AuditRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Zone, validation.Length(0, 50)),
		validation.Field(&r.ScheduledDate, dateRule),
		validation.Field(&r.Auditor, validation.Length(0, 100)),
		validation.Field(&r.AuditType, validation.Length(0, 50)),
		validation.Field(&r.Status, validation.Length(0, 50)),
		validation.Field(&r.Discrepancies, validation.Min(0)),
		validation.Field(&r.Accuracy, nonNegative, validation.By(func(value interface{}) error {
			if d, ok := value.(*decimal.Decimal); ok && d != nil && d.GreaterThan(hundred) {
				return fmt.Errorf("must be at most 100")
			}
			return nil
		})),
	)
}

func (r AuditRequest) validateCreate() error {
	if err := validate(r); err != nil {
		return err
	}
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Zone, validation.Required),
		validation.Field(&r.ScheduledDate, validation.Required),
		validation.Field(&r.Auditor, validation.Required),
		validation.Field(&r.AuditType, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return nil
}

// ListAudits returns audits, newest first. limit <= 0 returns all.
func (s *AuditService) ListAudits(ctx context.Context, limit int) ([]models.InventoryAudit, error) {
	ctx, span := util.StartSpan(ctx, "AuditService.ListAudits")
	defer span.End()

	return s.repo.ListAudits(ctx, limit)
}

// ScheduleAudit creates an audit with status Scheduled and accuracy 100
// unless the request says otherwise.
func (s *AuditService) ScheduleAudit(ctx context.Context, req *AuditRequest) (*models.InventoryAudit, error) {
	ctx, span := util.StartSpan(ctx, "AuditService.ScheduleAudit")
	defer span.End()

	if err := req.validateCreate(); err != nil {
		return nil, err
	}
	scheduled, err := parseDate("scheduled_date", req.ScheduledDate)
	if err != nil {
		return nil, err
	}

	audit := &models.InventoryAudit{
		Zone:          req.Zone,
		ScheduledDate: scheduled,
		Auditor:       req.Auditor,
		AuditType:     req.AuditType,
		Status:        orDefault(req.Status, models.AuditStatusScheduled),
		Accuracy:      hundred,
	}
	if req.Discrepancies != nil {
		audit.Discrepancies = *req.Discrepancies
	}
	if req.Accuracy != nil {
		audit.Accuracy = *req.Accuracy
	}

	if err := s.repo.CreateAudit(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to schedule audit: %w", err)
	}

	util.EntitiesCreatedTotal.WithLabelValues("audit").Inc()
	s.logger.Info("Audit scheduled",
		zap.String("audit_id", audit.ID),
		zap.String("zone", audit.Zone),
		zap.Time("scheduled_date", audit.ScheduledDate))

	event := &models.AuditScheduledEvent{
		AuditID:       audit.ID,
		Zone:          audit.Zone,
		ScheduledDate: audit.ScheduledDate,
		Auditor:       audit.Auditor,
	}
	if err := s.eventPublisher.PublishAuditScheduled(ctx, event); err != nil {
		s.logger.Error("Failed to publish AuditScheduled event", zap.Error(err))
	}

	return audit, nil
}

// UpdateAudit merges the request into the stored audit
func (s *AuditService) UpdateAudit(ctx context.Context, id string, req *AuditRequest) (*models.InventoryAudit, error) {
	ctx, span := util.StartSpan(ctx, "AuditService.UpdateAudit")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	audit, err := s.repo.GetAudit(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Zone != "" {
		audit.Zone = req.Zone
	}
	if req.ScheduledDate != "" {
		if audit.ScheduledDate, err = parseDate("scheduled_date", req.ScheduledDate); err != nil {
			return nil, err
		}
	}
	if req.Auditor != "" {
		audit.Auditor = req.Auditor
	}
	if req.AuditType != "" {
		audit.AuditType = req.AuditType
	}
	if req.Status != "" {
		audit.Status = req.Status
	}
	if req.Discrepancies != nil {
		audit.Discrepancies = *req.Discrepancies
	}
	if req.Accuracy != nil {
		audit.Accuracy = *req.Accuracy
	}

	if err := s.repo.UpdateAudit(ctx, audit); err != nil {
		return nil, err
	}
	return audit, nil
}

// DeleteAudit removes an audit
func (s *AuditService) DeleteAudit(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "AuditService.DeleteAudit")
	defer span.End()

	return s.repo.DeleteAudit(ctx, id)
}
