package settings

import (
	"context"
	"fmt"
	"sort"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// Repository is the key/value persistence the settings service needs.
type Repository interface {
	ListSettings(ctx context.Context) ([]models.Setting, error)
	GetSettings(ctx context.Context, keys []string) ([]models.Setting, error)
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, key, value string) (int64, error)
	// UpsertSettings writes every pair in one transaction.
	UpsertSettings(ctx context.Context, pairs []models.Setting) error
}

// Entry is one key/value pair of a group write. A nil Value is skipped.
type Entry struct {
	Key   string
	Value any
}

// Service provides typed and defaulted access to settings
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new settings service
func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		logger: util.GetLogger(),
	}
}

// GetAll returns every stored setting as a flat key/value map.
func (s *Service) GetAll(ctx context.Context) (map[string]string, error) {
	ctx, span := util.StartSpan(ctx, "SettingsService.GetAll")
	defer span.End()

	rows, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// GetGroup returns the group's values keyed by every group key. Missing keys
// map to nil for the general and warehouse groups and to false for the
// notifications group, whose "true"/"false" strings are returned as booleans.
func (s *Service) GetGroup(ctx context.Context, g Group) (map[string]any, error) {
	ctx, span := util.StartSpan(ctx, "SettingsService.GetGroup")
	defer span.End()

	stored, err := s.load(ctx, g)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(groupKeys[g]))
	for _, key := range groupKeys[g] {
		raw, ok := stored[key]
		switch {
		case g == GroupNotifications && !ok:
			out[key] = false
		case g == GroupNotifications:
			out[key] = notificationValue(raw)
		case !ok:
			out[key] = nil
		default:
			out[key] = raw
		}
	}
	return out, nil
}

// GetOne returns a single stored value or an error wrapping ErrNotFound.
func (s *Service) GetOne(ctx context.Context, key string) (string, error) {
	ctx, span := util.StartSpan(ctx, "SettingsService.GetOne")
	defer span.End()

	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return setting.Value, nil
}

// SetOne stores value under key, inserting or overwriting. The returned
// count is informational only.
func (s *Service) SetOne(ctx context.Context, key string, value any) (int64, error) {
	ctx, span := util.StartSpan(ctx, "SettingsService.SetOne")
	defer span.End()

	if err := validateKey(key); err != nil {
		return 0, err
	}
	str, err := FormatValue(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	affected, err := s.repo.UpsertSetting(ctx, key, str)
	if err != nil {
		util.SettingsWritesTotal.WithLabelValues("single", "error").Inc()
		return 0, fmt.Errorf("failed to save setting %q: %w", key, err)
	}

	util.SettingsWritesTotal.WithLabelValues("single", "ok").Inc()
	s.logger.Info("Setting saved", zap.String("key", key))
	return affected, nil
}

// SetGroup stores every entry with a non-nil value in one all-or-nothing
// write. It returns the number of entries written.
func (s *Service) SetGroup(ctx context.Context, entries []Entry) (int, error) {
	ctx, span := util.StartSpan(ctx, "SettingsService.SetGroup")
	defer span.End()

	pairs := make([]models.Setting, 0, len(entries))
	for _, e := range entries {
		if e.Value == nil {
			continue
		}
		if err := validateKey(e.Key); err != nil {
			return 0, err
		}
		str, err := FormatValue(e.Value)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", models.ErrValidation, e.Key, err)
		}
		pairs = append(pairs, models.Setting{Key: e.Key, Value: str})
	}

	if len(pairs) == 0 {
		return 0, nil
	}

	if err := s.repo.UpsertSettings(ctx, pairs); err != nil {
		util.SettingsWritesTotal.WithLabelValues("group", "error").Inc()
		return 0, fmt.Errorf("failed to save settings: %w", err)
	}

	util.SettingsWritesTotal.WithLabelValues("group", "ok").Inc()
	s.logger.Info("Settings saved", zap.Int("count", len(pairs)))
	return len(pairs), nil
}

// SetGroupValues writes the values that belong to g, in the group's key
// order. Keys outside the group are ignored.
func (s *Service) SetGroupValues(ctx context.Context, g Group, values map[string]any) (int, error) {
	entries := make([]Entry, 0, len(groupKeys[g]))
	for _, key := range groupKeys[g] {
		if v, ok := values[key]; ok {
			entries = append(entries, Entry{Key: key, Value: v})
		}
	}
	return s.SetGroup(ctx, entries)
}

// EntriesFromMap orders arbitrary key/value pairs by key so group writes of
// free-form bodies are deterministic.
func EntriesFromMap(values map[string]any) []Entry {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: values[k]})
	}
	return entries
}

// General returns the general group as a typed record.
func (s *Service) General(ctx context.Context) (General, error) {
	values, err := s.load(ctx, GroupGeneral)
	if err != nil {
		return General{}, err
	}
	return generalFrom(values), nil
}

// Warehouse returns the warehouse group as a typed record.
func (s *Service) Warehouse(ctx context.Context) (Warehouse, error) {
	values, err := s.load(ctx, GroupWarehouse)
	if err != nil {
		return Warehouse{}, err
	}
	return warehouseFrom(values), nil
}

// Notifications returns the notification preferences as a typed record.
func (s *Service) Notifications(ctx context.Context) (Notifications, error) {
	values, err := s.load(ctx, GroupNotifications)
	if err != nil {
		return Notifications{}, err
	}
	return notificationsFrom(values), nil
}

func (s *Service) load(ctx context.Context, g Group) (map[string]string, error) {
	keys, ok := groupKeys[g]
	if !ok {
		return nil, fmt.Errorf("%w: unknown settings group %q", models.ErrNotFound, g)
	}

	rows, err := s.repo.GetSettings(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s settings: %w", g, err)
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	return values, nil
}

func validateKey(key string) error {
	if err := validation.Validate(key, validation.Required, validation.Length(1, 100)); err != nil {
		return fmt.Errorf("%w: setting key: %v", models.ErrValidation, err)
	}
	return nil
}
