package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Sink delivers one serialized event
type Sink interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing warehouse events
type EventPublisher struct {
	sink Sink
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(sink Sink) *EventPublisher {
	return &EventPublisher{sink: sink}
}

func (ep *EventPublisher) publish(ctx context.Context, key string, base *models.BaseEvent, eventType string, event interface{}) error {
	if base.EventID == "" {
		base.EventID = uuid.New().String()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now().UTC()
	}
	base.EventType = eventType

	if err := ep.sink.PublishEvent(ctx, key, event); err != nil {
		return err
	}
	util.EventsPublishedTotal.WithLabelValues(eventType).Inc()
	return nil
}

// PublishZoneStockChanged publishes ZoneStockChanged event
func (ep *EventPublisher) PublishZoneStockChanged(ctx context.Context, event *models.ZoneStockChangedEvent) error {
	return ep.publish(ctx, "zone-"+event.ZoneID, &event.BaseEvent, models.EventTypeZoneStockChanged, event)
}

// PublishProductUpserted publishes ProductUpserted event
func (ep *EventPublisher) PublishProductUpserted(ctx context.Context, event *models.ProductUpsertedEvent) error {
	return ep.publish(ctx, "product-"+event.ProductID, &event.BaseEvent, models.EventTypeProductUpserted, event)
}

// PublishShipmentStatusChanged publishes ShipmentStatusChanged event
func (ep *EventPublisher) PublishShipmentStatusChanged(ctx context.Context, event *models.ShipmentStatusChangedEvent) error {
	return ep.publish(ctx, "shipment-"+event.ShipmentID, &event.BaseEvent, models.EventTypeShipmentStatusChanged, event)
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.publish(ctx, "order-"+event.OrderID, &event.BaseEvent, models.EventTypeOrderCreated, event)
}

// PublishAuditScheduled publishes AuditScheduled event
func (ep *EventPublisher) PublishAuditScheduled(ctx context.Context, event *models.AuditScheduledEvent) error {
	return ep.publish(ctx, "audit-"+event.AuditID, &event.BaseEvent, models.EventTypeAuditScheduled, event)
}

// PublishReportGenerated publishes ReportGenerated event
func (ep *EventPublisher) PublishReportGenerated(ctx context.Context, event *models.ReportGeneratedEvent) error {
	return ep.publish(ctx, "report-"+event.ReportID, &event.BaseEvent, models.EventTypeReportGenerated, event)
}

// LocalSink hands events straight to a handler in the publishing goroutine.
// It stands in for Kafka when no brokers are configured.
type LocalSink struct {
	handler MessageHandler
	logger  *zap.Logger
}

// NewLocalSink creates a sink that dispatches to handler synchronously
func NewLocalSink(handler MessageHandler) *LocalSink {
	return &LocalSink{handler: handler, logger: util.GetLogger()}
}

// PublishEvent encodes the event as the consumer would receive it and runs
// the handler. Handler errors are logged, not returned.
func (s *LocalSink) PublishEvent(ctx context.Context, key string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{Key: []byte(key), Value: eventBytes, Time: time.Now()}
	if err := s.handler(ctx, msg); err != nil {
		s.logger.Error("Local event handler failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// EventHandler routes incoming events by type
type EventHandler struct {
	onZoneStockChanged      func(context.Context, *models.ZoneStockChangedEvent) error
	onProductUpserted       func(context.Context, *models.ProductUpsertedEvent) error
	onShipmentStatusChanged func(context.Context, *models.ShipmentStatusChangedEvent) error
	onOrderCreated          func(context.Context, *models.OrderCreatedEvent) error
	onAuditScheduled        func(context.Context, *models.AuditScheduledEvent) error
	onReportGenerated       func(context.Context, *models.ReportGeneratedEvent) error
	logger                  *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnZoneStockChanged registers a handler for ZoneStockChanged events
func (eh *EventHandler) OnZoneStockChanged(handler func(context.Context, *models.ZoneStockChangedEvent) error) {
	eh.onZoneStockChanged = handler
}

// OnProductUpserted registers a handler for ProductUpserted events
func (eh *EventHandler) OnProductUpserted(handler func(context.Context, *models.ProductUpsertedEvent) error) {
	eh.onProductUpserted = handler
}

// OnShipmentStatusChanged registers a handler for ShipmentStatusChanged events
func (eh *EventHandler) OnShipmentStatusChanged(handler func(context.Context, *models.ShipmentStatusChangedEvent) error) {
	eh.onShipmentStatusChanged = handler
}

// OnOrderCreated registers a handler for OrderCreated events
func (eh *EventHandler) OnOrderCreated(handler func(context.Context, *models.OrderCreatedEvent) error) {
	eh.onOrderCreated = handler
}

// OnAuditScheduled registers a handler for AuditScheduled events
func (eh *EventHandler) OnAuditScheduled(handler func(context.Context, *models.AuditScheduledEvent) error) {
	eh.onAuditScheduled = handler
}

// OnReportGenerated registers a handler for ReportGenerated events
func (eh *EventHandler) OnReportGenerated(handler func(context.Context, *models.ReportGeneratedEvent) error) {
	eh.onReportGenerated = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeZoneStockChanged:
		return dispatch(ctx, msg.Value, eh.onZoneStockChanged)
	case models.EventTypeProductUpserted:
		return dispatch(ctx, msg.Value, eh.onProductUpserted)
	case models.EventTypeShipmentStatusChanged:
		return dispatch(ctx, msg.Value, eh.onShipmentStatusChanged)
	case models.EventTypeOrderCreated:
		return dispatch(ctx, msg.Value, eh.onOrderCreated)
	case models.EventTypeAuditScheduled:
		return dispatch(ctx, msg.Value, eh.onAuditScheduled)
	case models.EventTypeReportGenerated:
		return dispatch(ctx, msg.Value, eh.onReportGenerated)
	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}

func dispatch[E any](ctx context.Context, raw []byte, handler func(context.Context, *E) error) error {
	if handler == nil {
		return nil
	}
	var event E
	if err := json.Unmarshal(raw, &event); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", event, err)
	}
	return handler(ctx, &event)
}
