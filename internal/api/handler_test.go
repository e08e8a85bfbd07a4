package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/service"
	"warehouse-service/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, opts RouterOptions) (*gin.Engine, *memRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	pub := broker.NewEventPublisher(nopSink{})
	notifications := service.NewNotificationService(repo)

	h := NewHandler(Services{
		Zones:         service.NewZoneService(repo, pub),
		Products:      service.NewProductService(repo, pub),
		Users:         service.NewUserService(repo),
		Notifications: notifications,
		Reports:       service.NewReportService(nil, nil, notifications, nil, pub),
		Settings:      settings.NewService(repo),
	}, nil)

	router := gin.New()
	require.NoError(t, h.SetupRoutes(router, opts))
	return router, repo
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, RouterOptions{})

	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestZoneAndProductScenario(t *testing.T) {
	router, _ := newTestRouter(t, RouterOptions{})

	w := do(router, http.MethodPost, "/api/warehouse-zones", `{"id":"Z1","name":"Cold","max_capacity":100}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(router, http.MethodGet, "/api/warehouse-zones", "")
	require.Equal(t, http.StatusOK, w.Code)
	var zones []map[string]interface{}
	decode(t, w, &zones)
	require.Len(t, zones, 1)
	assert.Equal(t, "Z1", zones[0]["id"])
	assert.Equal(t, float64(0), zones[0]["capacity"])
	assert.Equal(t, float64(0), zones[0]["products_count"])
	assert.Equal(t, "Normal", zones[0]["status"])

	w = do(router, http.MethodPost, "/api/products", `{"id":"P1","name":"Milk","zone":"Z1","quantity":5,"unit_value":2.5}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(router, http.MethodPost, "/api/products", `{"id":"P2","name":"Ice","zone":"Z2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["error"])

	w = do(router, http.MethodDelete, "/api/warehouse-zones/Z1", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestZoneStockInvariant(t *testing.T) {
	router, repo := newTestRouter(t, RouterOptions{})
	repo.zones["Z1"] = models.WarehouseZone{ID: "Z1", Name: "Cold", Capacity: 90, MaxCapacity: 100, Status: "Normal"}

	w := do(router, http.MethodPatch, "/api/zones/Z1/stock", `{"delta":20}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPatch, "/api/zones/Z1/stock", `{"delta":-30}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 60, repo.zones["Z1"].Capacity)

	w = do(router, http.MethodPatch, "/api/zones/Z1/stock", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPut, "/api/warehouse-zones/Z1", `{"max_capacity":50}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPatch, "/api/warehouse-zones/Z1", `{"status":"Maintenance"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maintenance", repo.zones["Z1"].Status)

	w = do(router, http.MethodPatch, "/api/zones/Z9/stock", `{"delta":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t, RouterOptions{})

	w := do(router, http.MethodPost, "/api/warehouse-zones", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditLimitMustBePositive(t *testing.T) {
	router, _ := newTestRouter(t, RouterOptions{})

	for _, q := range []string{"abc", "0", "-3"} {
		w := do(router, http.MethodGet, "/api/inventory-audits?limit="+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestSettingsRoutes(t *testing.T) {
	router, repo := newTestRouter(t, RouterOptions{})

	w := do(router, http.MethodPut, "/api/settings/warehouse", `{"low_stock_threshold":15,"not_a_warehouse_key":"x"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "15", repo.settings["low_stock_threshold"])
	assert.NotContains(t, repo.settings, "not_a_warehouse_key")

	var warehouse map[string]interface{}
	decode(t, w, &warehouse)
	assert.Len(t, warehouse, 4)
	assert.Equal(t, "15", warehouse["low_stock_threshold"])
	assert.Nil(t, warehouse["default_zone"])

	w = do(router, http.MethodGet, "/api/settings/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	var prefs map[string]interface{}
	decode(t, w, &prefs)
	assert.Len(t, prefs, 7)
	assert.Equal(t, false, prefs["notification_low_stock"])

	w = do(router, http.MethodGet, "/api/settings/general", "")
	require.Equal(t, http.StatusOK, w.Code)
	var general map[string]interface{}
	decode(t, w, &general)
	assert.Len(t, general, 3)

	w = do(router, http.MethodPut, "/api/settings/feature_flag", `{"value":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(router, http.MethodGet, "/api/settings/feature_flag", "")
	require.Equal(t, http.StatusOK, w.Code)
	var one map[string]string
	decode(t, w, &one)
	assert.Equal(t, "true", one["value"])

	w = do(router, http.MethodGet, "/api/settings/missing_key", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodPut, "/api/settings/feature_flag", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPut, "/api/settings", `{"company_name":"Acme","timezone":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	var result map[string]interface{}
	decode(t, w, &result)
	assert.Equal(t, float64(1), result["updated"])
	assert.NotContains(t, repo.settings, "timezone")

	w = do(router, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all map[string]string
	decode(t, w, &all)
	assert.Equal(t, "Acme", all["company_name"])
	assert.Equal(t, "true", all["feature_flag"])
}

func TestSettingsNumbersStoredInDecimalForm(t *testing.T) {
	router, repo := newTestRouter(t, RouterOptions{})

	tests := []struct {
		body string
		want string
	}{
		{body: `{"value":1e1}`, want: "10"},
		{body: `{"value":10.0}`, want: "10"},
		{body: `{"value":1.50}`, want: "1.5"},
		{body: `{"value":-0}`, want: "0"},
	}
	for _, tt := range tests {
		w := do(router, http.MethodPut, "/api/settings/low_stock_threshold", tt.body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, tt.want, repo.settings["low_stock_threshold"], tt.body)
	}

	w := do(router, http.MethodPut, "/api/settings/warehouse", `{"low_stock_threshold":2E1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "20", repo.settings["low_stock_threshold"])
}

func TestNotificationProjections(t *testing.T) {
	router, _ := newTestRouter(t, RouterOptions{})

	w := do(router, http.MethodPost, "/api/app-notifications", `{"message":"Dock 3 blocked","type":"warning"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	decode(t, w, &created)
	assert.Equal(t, false, created["is_read"])
	id := int64(created["id"].(float64))

	w = do(router, http.MethodPost, "/api/app-notifications", `{"message":"x","type":"urgent"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	var feed []map[string]interface{}
	decode(t, w, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, false, feed[0]["read"])
	assert.Contains(t, feed[0], "createdAt")
	assert.NotContains(t, feed[0], "is_read")

	w = do(router, http.MethodGet, "/api/notifications/unread-count", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	w = do(router, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	var item map[string]interface{}
	decode(t, w, &item)
	assert.Equal(t, true, item["read"])

	w = do(router, http.MethodGet, "/api/app-notifications?unread=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(router, http.MethodPut, "/api/app-notifications/abc/read", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodDelete, fmt.Sprintf("/api/app-notifications/%d", id), "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(router, http.MethodDelete, fmt.Sprintf("/api/app-notifications/%d", id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateUserOmitsPassword(t *testing.T) {
	router, _ := newTestRouter(t, RouterOptions{})

	w := do(router, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "correct-horse")

	w = do(router, http.MethodPut, "/api/users/not-a-number", `{"name":"Bob"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownReportType(t *testing.T) {
	router, _ := newTestRouter(t, RouterOptions{})

	w := do(router, http.MethodPost, "/api/reports/generate", `{"report_type":"forecast"}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = do(router, http.MethodGet, "/api/reports/types", "")
	require.Equal(t, http.StatusOK, w.Code)
	var types []map[string]interface{}
	decode(t, w, &types)
	assert.Len(t, types, len(models.ReportTypes))
}

func TestRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, RouterOptions{RateLimit: "1-M"})

	w := do(router, http.MethodGet, "/api/warehouse-zones", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(router, http.MethodGet, "/api/warehouse-zones", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Health checks sit outside the limited group.
	w = do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvalidRateLimit(t *testing.T) {
	h := NewHandler(Services{}, nil)
	assert.Error(t, h.SetupRoutes(gin.New(), RouterOptions{RateLimit: "lots"}))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrValidation, http.StatusBadRequest},
		{models.ErrInvalidReference, http.StatusBadRequest},
		{fmt.Errorf("zone Z1: %w", models.ErrNotFound), http.StatusNotFound},
		{models.ErrConflict, http.StatusConflict},
		{models.ErrCapacityExceeded, http.StatusConflict},
		{fmt.Errorf("report: %w", models.ErrUnimplemented), http.StatusNotImplemented},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
