package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/settings"

	"github.com/shopspring/decimal"
)

type recordingSink struct {
	mu     sync.Mutex
	events []interface{}
}

func (r *recordingSink) PublishEvent(_ context.Context, _ string, event interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func newPublisher() (*broker.EventPublisher, *recordingSink) {
	sink := &recordingSink{}
	return broker.NewEventPublisher(sink), sink
}

// memStore is an in-memory stand-in for the PostgreSQL store
type memStore struct {
	zones         map[string]models.WarehouseZone
	products      map[string]models.Product
	audits        map[string]models.InventoryAudit
	incoming      map[string]models.IncomingShipment
	outgoing      map[string]models.OutgoingShipment
	orders        map[string]models.Order
	users         map[int64]models.User
	reports       map[string]models.GeneratedReport
	notifications map[int64]models.AppNotification
	seq           map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		zones:         map[string]models.WarehouseZone{},
		products:      map[string]models.Product{},
		audits:        map[string]models.InventoryAudit{},
		incoming:      map[string]models.IncomingShipment{},
		outgoing:      map[string]models.OutgoingShipment{},
		orders:        map[string]models.Order{},
		users:         map[int64]models.User{},
		reports:       map[string]models.GeneratedReport{},
		notifications: map[int64]models.AppNotification{},
		seq:           map[string]int64{},
	}
}

func (m *memStore) next(prefix string) string {
	m.seq[prefix]++
	return fmt.Sprintf("%s-%03d", prefix, m.seq[prefix])
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, models.ErrNotFound)
}

func (m *memStore) ListZones(context.Context) ([]models.WarehouseZone, error) {
	out := []models.WarehouseZone{}
	for _, z := range m.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetZone(_ context.Context, id string) (*models.WarehouseZone, error) {
	z, ok := m.zones[id]
	if !ok {
		return nil, notFound("zone", id)
	}
	return &z, nil
}

func (m *memStore) CreateZone(_ context.Context, zone *models.WarehouseZone) error {
	if zone.ID == "" {
		zone.ID = m.next("ZONE")
	}
	if _, ok := m.zones[zone.ID]; ok {
		return fmt.Errorf("%w: zone %s exists", models.ErrConflict, zone.ID)
	}
	zone.ProductsCount = 0
	m.zones[zone.ID] = *zone
	return nil
}

func (m *memStore) UpdateZone(_ context.Context, id string, mutate func(*models.WarehouseZone) error) (*models.WarehouseZone, error) {
	z, ok := m.zones[id]
	if !ok {
		return nil, notFound("zone", id)
	}
	if err := mutate(&z); err != nil {
		return nil, err
	}
	z.ID = id
	m.zones[id] = z
	return &z, nil
}

func (m *memStore) DeleteZone(_ context.Context, id string) error {
	if _, ok := m.zones[id]; !ok {
		return notFound("zone", id)
	}
	for _, p := range m.products {
		if p.Zone == id {
			return fmt.Errorf("%w: zone %s is referenced", models.ErrConflict, id)
		}
	}
	delete(m.zones, id)
	return nil
}

func (m *memStore) ListProducts(context.Context) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, notFound("product", id)
	}
	return &p, nil
}

func (m *memStore) UpsertProduct(_ context.Context, product *models.Product) error {
	if _, ok := m.zones[product.Zone]; !ok {
		return fmt.Errorf("%w: zone %s", models.ErrInvalidReference, product.Zone)
	}
	product.LastUpdated = time.Now()
	m.products[product.ID] = *product
	return nil
}

func (m *memStore) DeleteProduct(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return notFound("product", id)
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) ListAudits(_ context.Context, limit int) ([]models.InventoryAudit, error) {
	out := []models.InventoryAudit{}
	for _, a := range m.audits {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetAudit(_ context.Context, id string) (*models.InventoryAudit, error) {
	a, ok := m.audits[id]
	if !ok {
		return nil, notFound("audit", id)
	}
	return &a, nil
}

func (m *memStore) CreateAudit(_ context.Context, audit *models.InventoryAudit) error {
	if _, ok := m.zones[audit.Zone]; !ok {
		return fmt.Errorf("%w: zone %s", models.ErrInvalidReference, audit.Zone)
	}
	audit.ID = m.next("AUD")
	m.audits[audit.ID] = *audit
	return nil
}

func (m *memStore) UpdateAudit(_ context.Context, audit *models.InventoryAudit) error {
	if _, ok := m.audits[audit.ID]; !ok {
		return notFound("audit", audit.ID)
	}
	m.audits[audit.ID] = *audit
	return nil
}

func (m *memStore) DeleteAudit(_ context.Context, id string) error {
	if _, ok := m.audits[id]; !ok {
		return notFound("audit", id)
	}
	delete(m.audits, id)
	return nil
}

func (m *memStore) ListIncomingShipments(context.Context) ([]models.IncomingShipment, error) {
	out := []models.IncomingShipment{}
	for _, s := range m.incoming {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetIncomingShipment(_ context.Context, id string) (*models.IncomingShipment, error) {
	s, ok := m.incoming[id]
	if !ok {
		return nil, notFound("incoming shipment", id)
	}
	return &s, nil
}

func (m *memStore) CreateIncomingShipment(_ context.Context, shipment *models.IncomingShipment) error {
	for _, s := range m.incoming {
		if s.Tracking == shipment.Tracking {
			return fmt.Errorf("%w: tracking %s", models.ErrConflict, shipment.Tracking)
		}
	}
	shipment.ID = m.next("INC")
	m.incoming[shipment.ID] = *shipment
	return nil
}

func (m *memStore) UpdateIncomingShipment(_ context.Context, shipment *models.IncomingShipment) error {
	m.incoming[shipment.ID] = *shipment
	return nil
}

func (m *memStore) DeleteIncomingShipment(_ context.Context, id string) error {
	if _, ok := m.incoming[id]; !ok {
		return notFound("incoming shipment", id)
	}
	delete(m.incoming, id)
	return nil
}

func (m *memStore) ListOutgoingShipments(context.Context) ([]models.OutgoingShipment, error) {
	out := []models.OutgoingShipment{}
	for _, s := range m.outgoing {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetOutgoingShipment(_ context.Context, id string) (*models.OutgoingShipment, error) {
	s, ok := m.outgoing[id]
	if !ok {
		return nil, notFound("outgoing shipment", id)
	}
	return &s, nil
}

func (m *memStore) CreateOutgoingShipment(_ context.Context, shipment *models.OutgoingShipment) error {
	if shipment.ID == "" {
		shipment.ID = m.next("OUT")
	}
	m.outgoing[shipment.ID] = *shipment
	return nil
}

func (m *memStore) UpdateOutgoingShipment(_ context.Context, shipment *models.OutgoingShipment) error {
	m.outgoing[shipment.ID] = *shipment
	return nil
}

func (m *memStore) DeleteOutgoingShipment(_ context.Context, id string) error {
	if _, ok := m.outgoing[id]; !ok {
		return notFound("outgoing shipment", id)
	}
	delete(m.outgoing, id)
	return nil
}

func (m *memStore) ListOrders(context.Context) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, notFound("order", id)
	}
	return &o, nil
}

func (m *memStore) CreateOrder(_ context.Context, order *models.Order) error {
	order.ID = m.next("ORD")
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	m.orders[order.ID] = *order
	return nil
}

func (m *memStore) UpdateOrder(_ context.Context, order *models.Order) error {
	m.orders[order.ID] = *order
	return nil
}

func (m *memStore) DeleteOrder(_ context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return notFound("order", id)
	}
	delete(m.orders, id)
	return nil
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("user", fmt.Sprint(id))
	}
	return &u, nil
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email %s", models.ErrConflict, user.Email)
		}
	}
	user.ID = int64(len(m.users) + 1)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return nil
}

func (m *memStore) UpdateUser(_ context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return notFound("user", fmt.Sprint(id))
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) ListNotifications(_ context.Context, unreadOnly bool, limit int) ([]models.AppNotification, error) {
	out := []models.AppNotification{}
	for _, n := range m.notifications {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CreateNotification(_ context.Context, n *models.AppNotification) error {
	n.ID = int64(len(m.notifications) + 1)
	n.CreatedAt = time.Now()
	m.notifications[n.ID] = *n
	return nil
}

func (m *memStore) MarkNotificationRead(_ context.Context, id int64) (*models.AppNotification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, notFound("notification", fmt.Sprint(id))
	}
	n.IsRead = true
	m.notifications[id] = n
	return &n, nil
}

func (m *memStore) MarkAllNotificationsRead(context.Context) (int64, error) {
	var changed int64
	for id, n := range m.notifications {
		if !n.IsRead {
			n.IsRead = true
			m.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (m *memStore) DeleteNotification(_ context.Context, id int64) error {
	if _, ok := m.notifications[id]; !ok {
		return notFound("notification", fmt.Sprint(id))
	}
	delete(m.notifications, id)
	return nil
}

func (m *memStore) CountUnreadNotifications(context.Context) (int, error) {
	n := 0
	for _, row := range m.notifications {
		if !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateReport(_ context.Context, report *models.GeneratedReport) error {
	report.ID = m.next("REP")
	report.GeneratedAt = time.Now()
	m.reports[report.ID] = *report
	return nil
}

func (m *memStore) GetReport(_ context.Context, id string) (*models.GeneratedReport, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, notFound("report", id)
	}
	return &r, nil
}

func (m *memStore) ListRecentReports(_ context.Context, limit int) ([]models.GeneratedReport, error) {
	out := []models.GeneratedReport{}
	for _, r := range m.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ReportOverview(context.Context) (*models.ReportOverview, error) {
	o := &models.ReportOverview{ByType: map[string]int{}}
	for _, r := range m.reports {
		o.TotalReports++
		o.ThisMonth++
		o.ByType[r.ReportType]++
	}
	return o, nil
}

func (m *memStore) FinancialSummary(context.Context) (*models.FinancialSummary, error) {
	s := &models.FinancialSummary{}
	for _, p := range m.products {
		s.InventoryValue = s.InventoryValue.Add(p.UnitValue.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	for _, sh := range m.incoming {
		s.IncomingValue = s.IncomingValue.Add(sh.Value)
	}
	for _, sh := range m.outgoing {
		s.OutgoingValue = s.OutgoingValue.Add(sh.Value)
	}
	return s, nil
}

func (m *memStore) DashboardStats(_ context.Context, threshold int) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{TotalProducts: len(m.products), TotalZones: len(m.zones)}
	for _, p := range m.products {
		floor := p.MinStock
		if floor == 0 {
			floor = threshold
		}
		if p.Quantity <= floor {
			stats.LowStockProducts++
		}
	}
	return stats, nil
}

// staticSettings serves fixed settings groups
type staticSettings struct {
	general   settings.General
	warehouse settings.Warehouse
}

func (s staticSettings) General(context.Context) (settings.General, error) {
	return s.general, nil
}

func (s staticSettings) Warehouse(context.Context) (settings.Warehouse, error) {
	return s.warehouse, nil
}

// memIdempotency is an in-memory IdempotencyStore
type memIdempotency struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func (m *memIdempotency) setTTL(key string, ttl time.Duration) {
	if m.ttls == nil {
		m.ttls = map[string]time.Duration{}
	}
	m.ttls[key] = ttl
}

// expire drops key as if its TTL ran out
func (m *memIdempotency) expire(key string) {
	delete(m.values, key)
	delete(m.ttls, key)
}

func (m *memIdempotency) ClaimIdempotencyKey(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	m.setTTL(key, ttl)
	return true, nil
}

func (m *memIdempotency) GetIdempotencyKey(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memIdempotency) SetIdempotencyKey(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = fmt.Sprint(value)
	m.setTTL(key, ttl)
	return nil
}

func (m *memIdempotency) DeleteIdempotencyKey(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}
