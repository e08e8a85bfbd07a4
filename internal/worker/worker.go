package worker

import (
	"context"
	"fmt"
	"time"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/settings"
	"warehouse-service/internal/util"

	"go.uber.org/zap"
)

const processedEventTTL = 24 * time.Hour

// Notifier records a console notification
type Notifier interface {
	Notify(ctx context.Context, notificationType, message, link string) (*models.AppNotification, error)
}

// Preferences reads the settings that gate notifications
type Preferences interface {
	Notifications(ctx context.Context) (settings.Notifications, error)
	Warehouse(ctx context.Context) (settings.Warehouse, error)
}

// Deduper remembers processed event IDs so redelivered events are dropped
type Deduper interface {
	ClaimIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	DeleteIdempotencyKey(ctx context.Context, key string) error
}

// NotificationWorker turns warehouse events into console notifications
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	notifier     Notifier
	prefs        Preferences
	deduper      Deduper
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker. consumer is nil
// when events are dispatched in-process; deduper may be nil.
func NewNotificationWorker(
	consumer *broker.Consumer,
	notifier Notifier,
	prefs Preferences,
	deduper Deduper,
) *NotificationWorker {
	w := &NotificationWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		notifier:     notifier,
		prefs:        prefs,
		deduper:      deduper,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnZoneStockChanged(w.handleZoneStockChanged)
	w.eventHandler.OnProductUpserted(w.handleProductUpserted)
	w.eventHandler.OnShipmentStatusChanged(w.handleShipmentStatusChanged)
	w.eventHandler.OnOrderCreated(w.handleOrderCreated)
	w.eventHandler.OnAuditScheduled(w.handleAuditScheduled)
	w.eventHandler.OnReportGenerated(w.handleReportGenerated)

	return w
}

// Handler returns the message handler, for in-process dispatch
func (w *NotificationWorker) Handler() broker.MessageHandler {
	return w.eventHandler.HandleMessage
}

// Start consumes events until ctx is cancelled
func (w *NotificationWorker) Start(ctx context.Context) error {
	if w.consumer == nil {
		return fmt.Errorf("notification worker has no consumer")
	}
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	if w.consumer == nil {
		return nil
	}
	return w.consumer.Close()
}

// notification is what a handler wants to emit. A nil notification means
// the event needs none.
type notification struct {
	kind    string
	message string
	link    string
}

// process runs build once per event ID and records the result
func (w *NotificationWorker) process(ctx context.Context, base models.BaseEvent, build func(settings.Notifications) (*notification, error)) error {
	if w.deduper != nil && base.EventID != "" {
		claimed, err := w.deduper.ClaimIdempotencyKey(ctx, "event:"+base.EventID, "1", processedEventTTL)
		if err != nil {
			w.logger.Warn("Failed to check processed events, handling anyway", zap.Error(err))
		} else if !claimed {
			util.EventsHandledTotal.WithLabelValues(base.EventType, "duplicate").Inc()
			w.logger.Debug("Skipping duplicate event", zap.String("event_id", base.EventID))
			return nil
		}
	}

	result, err := w.emit(ctx, build)
	if err != nil {
		util.EventsHandledTotal.WithLabelValues(base.EventType, "error").Inc()
		if w.deduper != nil && base.EventID != "" {
			if derr := w.deduper.DeleteIdempotencyKey(ctx, "event:"+base.EventID); derr != nil {
				w.logger.Warn("Failed to release event claim", zap.Error(derr))
			}
		}
		return fmt.Errorf("event %s: %w", base.EventID, err)
	}
	util.EventsHandledTotal.WithLabelValues(base.EventType, result).Inc()
	return nil
}

// emit reports "notified" or "skipped" on success
func (w *NotificationWorker) emit(ctx context.Context, build func(settings.Notifications) (*notification, error)) (string, error) {
	prefs, err := w.prefs.Notifications(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load notification preferences: %w", err)
	}

	n, err := build(prefs)
	if err != nil {
		return "", err
	}
	if n == nil {
		return "skipped", nil
	}

	if _, err := w.notifier.Notify(ctx, n.kind, n.message, n.link); err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}
	return "notified", nil
}

func (w *NotificationWorker) handleZoneStockChanged(ctx context.Context, e *models.ZoneStockChangedEvent) error {
	return w.process(ctx, e.BaseEvent, func(prefs settings.Notifications) (*notification, error) {
		if !prefs.CapacityAlerts {
			return nil, nil
		}
		zone := models.WarehouseZone{ID: e.ZoneID, Capacity: e.Capacity, MaxCapacity: e.MaxCapacity}
		pct := zone.UtilizationPercent()
		if pct < models.CapacityWarningPercent {
			return nil, nil
		}
		return &notification{
			kind:    models.NotificationWarning,
			message: fmt.Sprintf("Zone %s is at %.0f%% capacity (%d/%d)", zoneLabel(e), pct, e.Capacity, e.MaxCapacity),
			link:    "/warehouse-zones",
		}, nil
	})
}

func (w *NotificationWorker) handleProductUpserted(ctx context.Context, e *models.ProductUpsertedEvent) error {
	return w.process(ctx, e.BaseEvent, func(prefs settings.Notifications) (*notification, error) {
		if !prefs.LowStock {
			return nil, nil
		}

		floor := e.MinStock
		if floor == 0 {
			wh, err := w.prefs.Warehouse(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load warehouse settings: %w", err)
			}
			floor = wh.LowStockThresholdOrDefault()
		}
		if e.Quantity > floor {
			return nil, nil
		}

		return &notification{
			kind:    models.NotificationWarning,
			message: fmt.Sprintf("Low stock: %s (%s) has %d units left in zone %s", e.Name, e.ProductID, e.Quantity, e.Zone),
			link:    "/inventory",
		}, nil
	})
}

func (w *NotificationWorker) handleShipmentStatusChanged(ctx context.Context, e *models.ShipmentStatusChangedEvent) error {
	return w.process(ctx, e.BaseEvent, func(prefs settings.Notifications) (*notification, error) {
		if !prefs.ShipmentUpdates {
			return nil, nil
		}
		return &notification{
			kind:    models.NotificationInfo,
			message: fmt.Sprintf("%s shipment %s changed from %s to %s", directionLabel(e.Direction), e.ShipmentID, e.PreviousStatus, e.Status),
			link:    "/" + e.Direction + "-shipments",
		}, nil
	})
}

func (w *NotificationWorker) handleOrderCreated(ctx context.Context, e *models.OrderCreatedEvent) error {
	return w.process(ctx, e.BaseEvent, func(prefs settings.Notifications) (*notification, error) {
		if !prefs.OrderUpdates {
			return nil, nil
		}
		return &notification{
			kind:    models.NotificationInfo,
			message: fmt.Sprintf("New %s priority order %s from %s", e.Priority, e.OrderID, e.Customer),
			link:    "/orders",
		}, nil
	})
}

func (w *NotificationWorker) handleAuditScheduled(ctx context.Context, e *models.AuditScheduledEvent) error {
	return w.process(ctx, e.BaseEvent, func(prefs settings.Notifications) (*notification, error) {
		if !prefs.AuditReminders {
			return nil, nil
		}
		return &notification{
			kind: models.NotificationInfo,
			message: fmt.Sprintf("Audit %s of zone %s scheduled for %s (%s)",
				e.AuditID, e.Zone, e.ScheduledDate.Format("2006-01-02"), e.Auditor),
			link: "/inventory-audits",
		}, nil
	})
}

func (w *NotificationWorker) handleReportGenerated(ctx context.Context, e *models.ReportGeneratedEvent) error {
	return w.process(ctx, e.BaseEvent, func(prefs settings.Notifications) (*notification, error) {
		if !prefs.SystemUpdates {
			return nil, nil
		}
		return &notification{
			kind:    models.NotificationSuccess,
			message: fmt.Sprintf("Report %q (%s) is ready", e.ReportName, e.ReportType),
			link:    "/reports",
		}, nil
	})
}

func zoneLabel(e *models.ZoneStockChangedEvent) string {
	if e.ZoneName != "" {
		return e.ZoneName
	}
	return e.ZoneID
}

func directionLabel(direction string) string {
	if direction == models.DirectionOutgoing {
		return "Outgoing"
	}
	return "Incoming"
}
