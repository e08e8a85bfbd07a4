package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeZoneStockChanged      = "ZONE_STOCK_CHANGED"
	EventTypeProductUpserted       = "PRODUCT_UPSERTED"
	EventTypeShipmentStatusChanged = "SHIPMENT_STATUS_CHANGED"
	EventTypeOrderCreated          = "ORDER_CREATED"
	EventTypeAuditScheduled        = "AUDIT_SCHEDULED"
	EventTypeReportGenerated       = "REPORT_GENERATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ZoneStockChangedEvent published after a stock delta is applied to a zone
type ZoneStockChangedEvent struct {
	BaseEvent
	ZoneID      string `json:"zone_id"`
	ZoneName    string `json:"zone_name"`
	Delta       int    `json:"delta"`
	Capacity    int    `json:"capacity"`
	MaxCapacity int    `json:"max_capacity"`
}

// ProductUpsertedEvent published when a product is created or overwritten
type ProductUpsertedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Zone      string `json:"zone"`
	Quantity  int    `json:"quantity"`
	MinStock  int    `json:"min_stock"`
}

// ShipmentStatusChangedEvent published when a shipment moves to a new status
type ShipmentStatusChangedEvent struct {
	BaseEvent
	ShipmentID     string `json:"shipment_id"`
	Direction      string `json:"direction"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
}

// OrderCreatedEvent published when an order is recorded
type OrderCreatedEvent struct {
	BaseEvent
	OrderID  string          `json:"order_id"`
	Customer string          `json:"customer"`
	Value    decimal.Decimal `json:"value"`
	Priority string          `json:"priority"`
}

// AuditScheduledEvent published when an inventory audit is scheduled
type AuditScheduledEvent struct {
	BaseEvent
	AuditID       string    `json:"audit_id"`
	Zone          string    `json:"zone"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Auditor       string    `json:"auditor"`
}

// ReportGeneratedEvent published after a report manifest row is written
type ReportGeneratedEvent struct {
	BaseEvent
	ReportID   string `json:"report_id"`
	ReportName string `json:"report_name"`
	ReportType string `json:"report_type"`
}

// Shipment directions
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)
