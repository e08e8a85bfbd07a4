package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"warehouse-service/internal/models"
)

type nopSink struct{}

func (nopSink) PublishEvent(context.Context, string, interface{}) error { return nil }

// memRepo backs the zone, product, user, notification and settings services
type memRepo struct {
	mu            sync.Mutex
	zones         map[string]models.WarehouseZone
	products      map[string]models.Product
	users         map[int64]models.User
	notifications map[int64]models.AppNotification
	settings      map[string]string
	nextID        int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		zones:         map[string]models.WarehouseZone{},
		products:      map[string]models.Product{},
		users:         map[int64]models.User{},
		notifications: map[int64]models.AppNotification{},
		settings:      map[string]string{},
	}
}

func (m *memRepo) ListZones(context.Context) ([]models.WarehouseZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.WarehouseZone{}
	for _, z := range m.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) GetZone(_ context.Context, id string) (*models.WarehouseZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[id]
	if !ok {
		return nil, fmt.Errorf("zone %s: %w", id, models.ErrNotFound)
	}
	return &z, nil
}

func (m *memRepo) CreateZone(_ context.Context, zone *models.WarehouseZone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.zones[zone.ID]; ok {
		return fmt.Errorf("%w: zone %s exists", models.ErrConflict, zone.ID)
	}
	m.zones[zone.ID] = *zone
	return nil
}

func (m *memRepo) UpdateZone(_ context.Context, id string, mutate func(*models.WarehouseZone) error) (*models.WarehouseZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[id]
	if !ok {
		return nil, fmt.Errorf("zone %s: %w", id, models.ErrNotFound)
	}
	if err := mutate(&z); err != nil {
		return nil, err
	}
	m.zones[id] = z
	return &z, nil
}

func (m *memRepo) DeleteZone(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Zone == id {
			return fmt.Errorf("%w: zone %s is referenced", models.ErrConflict, id)
		}
	}
	if _, ok := m.zones[id]; !ok {
		return fmt.Errorf("zone %s: %w", id, models.ErrNotFound)
	}
	delete(m.zones, id)
	return nil
}

func (m *memRepo) ListProducts(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memRepo) GetProduct(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (m *memRepo) UpsertProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[p.Zone]
	if !ok {
		return fmt.Errorf("%w: zone %s", models.ErrInvalidReference, p.Zone)
	}
	if _, existed := m.products[p.ID]; !existed {
		z.ProductsCount++
		m.zones[z.ID] = z
	}
	p.LastUpdated = time.Now()
	m.products[p.ID] = *p
	return nil
}

func (m *memRepo) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *memRepo) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memRepo) GetUser(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	return &u, nil
}

func (m *memRepo) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = *u
	return nil
}

func (m *memRepo) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *memRepo) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memRepo) ListNotifications(_ context.Context, unreadOnly bool, limit int) ([]models.AppNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *memRepo) CreateNotification(_ context.Context, n *models.AppNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n.ID = m.nextID
	n.CreatedAt = time.Now()
	m.notifications[n.ID] = *n
	return nil
}

func (m *memRepo) MarkNotificationRead(_ context.Context, id int64) (*models.AppNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, fmt.Errorf("notification %d: %w", id, models.ErrNotFound)
	}
	n.IsRead = true
	m.notifications[id] = n
	return &n, nil
}

func (m *memRepo) MarkAllNotificationsRead(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *memRepo) DeleteNotification(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notifications[id]; !ok {
		return fmt.Errorf("notification %d: %w", id, models.ErrNotFound)
	}
	delete(m.notifications, id)
	return nil
}

func (m *memRepo) CountUnreadNotifications(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) ListSettings(context.Context) ([]models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Setting{}
	for k, v := range m.settings {
		out = append(out, models.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (m *memRepo) GetSettings(_ context.Context, keys []string) ([]models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Setting{}
	for _, k := range keys {
		if v, ok := m.settings[k]; ok {
			out = append(out, models.Setting{Key: k, Value: v})
		}
	}
	return out, nil
}

func (m *memRepo) GetSetting(_ context.Context, key string) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.settings[key]
	if !ok {
		return nil, fmt.Errorf("setting %s: %w", key, models.ErrNotFound)
	}
	return &models.Setting{Key: key, Value: v}, nil
}

func (m *memRepo) UpsertSetting(_ context.Context, key, value string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return 1, nil
}

func (m *memRepo) UpsertSettings(_ context.Context, pairs []models.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pairs {
		m.settings[p.Key] = p.Value
	}
	return nil
}
