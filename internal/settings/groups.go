// Package settings gives typed, defaulted access to the flat settings table.
//
// The table stores every value as a string. Settings are read and written in
// three fixed groups (general, warehouse, notifications); a single-key path
// allows access to any other key.
package settings

import (
	"strings"

	"warehouse-service/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold applies when low_stock_threshold is missing,
// negative or not a whole number.
const DefaultLowStockThreshold = 10

// Group names a fixed set of setting keys.
type Group string

const (
	GroupGeneral       Group = "general"
	GroupWarehouse     Group = "warehouse"
	GroupNotifications Group = "notifications"
)

// General group keys
const (
	KeyCompanyName = "company_name"
	KeyTimezone    = "timezone"
	KeyDateFormat  = "date_format"
)

// Warehouse group keys
const (
	KeyLowStockThreshold       = "low_stock_threshold"
	KeyDefaultZone             = "default_zone"
	KeyAutoReorder             = "auto_reorder"
	KeyInventoryCountFrequency = "inventory_count_frequency"
)

// Notification preference keys
const (
	KeyNotifyLowStock        = "notification_low_stock"
	KeyNotifyShipmentUpdates = "notification_shipment_updates"
	KeyNotifyOrderUpdates    = "notification_order_updates"
	KeyNotifyAuditReminders  = "notification_audit_reminders"
	KeyNotifyCapacityAlerts  = "notification_capacity_alerts"
	KeyNotifyEmailDigest     = "notification_email_digest"
	KeyNotifySystemUpdates   = "notification_system_updates"
)

var groupKeys = map[Group][]string{
	GroupGeneral: {KeyCompanyName, KeyTimezone, KeyDateFormat},
	GroupWarehouse: {
		KeyLowStockThreshold,
		KeyDefaultZone,
		KeyAutoReorder,
		KeyInventoryCountFrequency,
	},
	GroupNotifications: {
		KeyNotifyLowStock,
		KeyNotifyShipmentUpdates,
		KeyNotifyOrderUpdates,
		KeyNotifyAuditReminders,
		KeyNotifyCapacityAlerts,
		KeyNotifyEmailDigest,
		KeyNotifySystemUpdates,
	},
}

// ParseGroup maps a route segment to a Group.
func ParseGroup(name string) (Group, bool) {
	g := Group(name)
	_, ok := groupKeys[g]
	return g, ok
}

// Keys returns a copy of the group's keys in their fixed order.
func (g Group) Keys() []string {
	keys := groupKeys[g]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Contains reports whether key belongs to the group.
func (g Group) Contains(key string) bool {
	for _, k := range groupKeys[g] {
		if k == key {
			return true
		}
	}
	return false
}

// Defaults returns the first-run rows for every group key. They are written
// with overwrite-on-conflict at every startup.
func Defaults() []models.Setting {
	return []models.Setting{
		{Key: KeyCompanyName, Value: "Warehouse Co."},
		{Key: KeyTimezone, Value: "UTC"},
		{Key: KeyDateFormat, Value: "YYYY-MM-DD"},
		{Key: KeyLowStockThreshold, Value: "10"},
		{Key: KeyDefaultZone, Value: ""},
		{Key: KeyAutoReorder, Value: "false"},
		{Key: KeyInventoryCountFrequency, Value: "monthly"},
		{Key: KeyNotifyLowStock, Value: "true"},
		{Key: KeyNotifyShipmentUpdates, Value: "true"},
		{Key: KeyNotifyOrderUpdates, Value: "true"},
		{Key: KeyNotifyAuditReminders, Value: "true"},
		{Key: KeyNotifyCapacityAlerts, Value: "true"},
		{Key: KeyNotifyEmailDigest, Value: "false"},
		{Key: KeyNotifySystemUpdates, Value: "true"},
	}
}

// General is the typed view of the general group
type General struct {
	CompanyName string
	Timezone    string
	DateFormat  string
}

// Warehouse is the typed view of the warehouse group. Values stay strings;
// numeric ones are parsed on demand by their accessors.
type Warehouse struct {
	LowStockThreshold       string
	DefaultZone             string
	AutoReorder             string
	InventoryCountFrequency string
}

// LowStockThresholdValue parses low_stock_threshold. Any decimal spelling
// of a whole number is accepted ("10", "10.0", "1e1"). ok is false when the
// stored value is missing or not a whole number.
func (w Warehouse) LowStockThresholdValue() (int, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(w.LowStockThreshold))
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	return int(d.IntPart()), true
}

// LowStockThresholdOrDefault is LowStockThresholdValue with negative and
// unparsable values replaced by DefaultLowStockThreshold.
func (w Warehouse) LowStockThresholdOrDefault() int {
	if n, ok := w.LowStockThresholdValue(); ok && n >= 0 {
		return n
	}
	return DefaultLowStockThreshold
}

// Notifications is the typed view of the notification preferences. Anything
// other than the literal "true" reads as false.
type Notifications struct {
	LowStock        bool
	ShipmentUpdates bool
	OrderUpdates    bool
	AuditReminders  bool
	CapacityAlerts  bool
	EmailDigest     bool
	SystemUpdates   bool
}

func generalFrom(values map[string]string) General {
	return General{
		CompanyName: values[KeyCompanyName],
		Timezone:    values[KeyTimezone],
		DateFormat:  values[KeyDateFormat],
	}
}

func warehouseFrom(values map[string]string) Warehouse {
	return Warehouse{
		LowStockThreshold:       values[KeyLowStockThreshold],
		DefaultZone:             values[KeyDefaultZone],
		AutoReorder:             values[KeyAutoReorder],
		InventoryCountFrequency: values[KeyInventoryCountFrequency],
	}
}

func notificationsFrom(values map[string]string) Notifications {
	on := func(key string) bool { return values[key] == "true" }
	return Notifications{
		LowStock:        on(KeyNotifyLowStock),
		ShipmentUpdates: on(KeyNotifyShipmentUpdates),
		OrderUpdates:    on(KeyNotifyOrderUpdates),
		AuditReminders:  on(KeyNotifyAuditReminders),
		CapacityAlerts:  on(KeyNotifyCapacityAlerts),
		EmailDigest:     on(KeyNotifyEmailDigest),
		SystemUpdates:   on(KeyNotifySystemUpdates),
	}
}
