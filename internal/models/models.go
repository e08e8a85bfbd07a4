package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money renders as a JSON number, matching what the console sends.
	decimal.MarshalJSONWithoutQuotes = true
}

// WarehouseZone is a physical storage area with a capacity ceiling
type WarehouseZone struct {
	ID            string   `db:"id" json:"id"`
	Name          string   `db:"name" json:"name"`
	Capacity      int      `db:"capacity" json:"capacity"`
	MaxCapacity   int      `db:"max_capacity" json:"max_capacity"`
	Temperature   *float64 `db:"temperature" json:"temperature"`
	Humidity      *float64 `db:"humidity" json:"humidity"`
	Status        string   `db:"status" json:"status"`
	ProductsCount int      `db:"products_count" json:"products_count"`
}

// Product represents a stock-keeping unit stored in a zone
type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Category    string          `db:"category" json:"category"`
	Zone        string          `db:"zone" json:"zone"`
	Shelf       string          `db:"shelf" json:"shelf"`
	UnitValue   decimal.Decimal `db:"unit_value" json:"unit_value"`
	Quantity    int             `db:"quantity" json:"quantity"`
	MinStock    int             `db:"min_stock" json:"minStock"`
	MaxStock    int             `db:"max_stock" json:"maxStock"`
	LastUpdated time.Time       `db:"last_updated" json:"lastUpdated"`
}

// InventoryAudit is a scheduled or completed stock count of one zone
type InventoryAudit struct {
	ID            string          `db:"id" json:"id"`
	Zone          string          `db:"zone" json:"zone"`
	ScheduledDate time.Time       `db:"scheduled_date" json:"scheduled_date"`
	Auditor       string          `db:"auditor" json:"auditor"`
	AuditType     string          `db:"audit_type" json:"audit_type"`
	Status        string          `db:"status" json:"status"`
	Discrepancies int             `db:"discrepancies" json:"discrepancies"`
	Accuracy      decimal.Decimal `db:"accuracy" json:"accuracy"`
}

// IncomingShipment is goods inbound from a supplier
type IncomingShipment struct {
	ID       string          `db:"id" json:"id"`
	Supplier string          `db:"supplier" json:"supplier"`
	ETA      time.Time       `db:"eta" json:"eta"`
	Items    int             `db:"items" json:"items"`
	Value    decimal.Decimal `db:"value" json:"value"`
	Tracking string          `db:"tracking" json:"tracking"`
	Status   string          `db:"status" json:"status"`
}

// OutgoingShipment is goods outbound to a customer
type OutgoingShipment struct {
	ID          string          `db:"id" json:"id"`
	Customer    string          `db:"customer" json:"customer"`
	Departure   time.Time       `db:"departure" json:"departure"`
	Destination string          `db:"destination" json:"destination"`
	Items       int             `db:"items" json:"items"`
	Value       decimal.Decimal `db:"value" json:"value"`
	Status      string          `db:"status" json:"status"`
}

// Order represents a customer order
type Order struct {
	ID        string          `db:"id" json:"id"`
	Customer  string          `db:"customer" json:"customer"`
	Status    string          `db:"status" json:"status"`
	Items     int             `db:"items" json:"items"`
	Value     decimal.Decimal `db:"value" json:"value"`
	OrderDate time.Time       `db:"order_date" json:"order_date"`
	Priority  string          `db:"priority" json:"priority"`
}

// GeneratedReport is the manifest row of a produced report file
type GeneratedReport struct {
	ID          string    `db:"id" json:"id"`
	ReportName  string    `db:"report_name" json:"report_name"`
	ReportType  string    `db:"report_type" json:"report_type"`
	GeneratedAt time.Time `db:"generated_at" json:"generated_at"`
	FileFormat  string    `db:"file_format" json:"file_format"`
	FileSizeKB  int       `db:"file_size_kb" json:"file_size_kb"`
	Status      string    `db:"status" json:"status"`
}

// Setting is one row of the key/value settings table
type Setting struct {
	Key         string    `db:"setting_key" json:"setting_key"`
	Value       string    `db:"setting_value" json:"setting_value"`
	LastUpdated time.Time `db:"last_updated" json:"lastUpdated"`
}

// User is a console account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AppNotification is a message shown in the console notification tray
type AppNotification struct {
	ID        int64     `db:"id" json:"id"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	Link      *string   `db:"link" json:"link"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Defaults applied when a create request leaves the field empty
const (
	ZoneStatusNormal      = "Normal"
	AuditStatusScheduled  = "Scheduled"
	ShipmentStatusPending = "Pending"
	OrderStatusPending    = "Pending"
	OrderPriorityLow      = "Low"
	UserStatusActive      = "Active"
	UserRoleStaff         = "Staff"
	ReportStatusCompleted = "Completed"
	ReportFormatDefault   = "PDF"
)

// Terminal shipment statuses, used by the dashboard to count open shipments
const (
	IncomingStatusReceived  = "Received"
	OutgoingStatusDelivered = "Delivered"
)

// Notification types
const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationError   = "error"
	NotificationSuccess = "success"
)

// Report types
const (
	ReportInventory   = "inventory"
	ReportShipments   = "shipments"
	ReportAudits      = "audits"
	ReportPerformance = "performance"
	ReportFinancial   = "financial"
)

// ReportTypes lists the report types in display order.
var ReportTypes = []string{ReportInventory, ReportShipments, ReportAudits, ReportPerformance, ReportFinancial}

// IsReportType reports whether t names a known report type.
func IsReportType(t string) bool {
	for _, rt := range ReportTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// FinancialSummary holds the three aggregate sums of the financial report
type FinancialSummary struct {
	InventoryValue decimal.Decimal `db:"inventory_value" json:"inventory_value"`
	IncomingValue  decimal.Decimal `db:"incoming_value" json:"incoming_value"`
	OutgoingValue  decimal.Decimal `db:"outgoing_value" json:"outgoing_value"`
}

// DashboardStats is the landing page summary
type DashboardStats struct {
	TotalProducts       int             `db:"total_products" json:"totalProducts"`
	TotalZones          int             `db:"total_zones" json:"totalZones"`
	LowStockProducts    int             `db:"low_stock_products" json:"lowStockProducts"`
	PendingOrders       int             `db:"pending_orders" json:"pendingOrders"`
	IncomingOpen        int             `db:"incoming_open" json:"incomingShipments"`
	OutgoingOpen        int             `db:"outgoing_open" json:"outgoingShipments"`
	ZoneUtilization     decimal.Decimal `db:"zone_utilization" json:"zoneUtilization"`
	AuditAccuracy       decimal.Decimal `db:"audit_accuracy" json:"auditAccuracy"`
	TotalInventoryValue decimal.Decimal `db:"total_inventory_value" json:"totalInventoryValue"`
}

// ReportOverview summarises the generated_reports table
type ReportOverview struct {
	TotalReports    int            `json:"totalReports"`
	ThisMonth       int            `json:"thisMonth"`
	ByType          map[string]int `json:"byType"`
	LastGeneratedAt *time.Time     `json:"lastGeneratedAt"`
}
