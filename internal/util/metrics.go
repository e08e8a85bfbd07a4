package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SettingsWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settings_writes_total",
		Help: "Total number of settings write operations",
	}, []string{"mode", "result"})

	ZoneStockAdjustmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zone_stock_adjustments_total",
		Help: "Total number of applied zone stock deltas",
	})

	ZoneCapacityRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zone_capacity_rejections_total",
		Help: "Total number of zone writes rejected by the capacity invariant",
	})

	ProductUpsertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_upserts_total",
		Help: "Total number of product upserts",
	})

	EntitiesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entities_created_total",
		Help: "Total number of created records by entity",
	}, []string{"entity"})

	ReportsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_generated_total",
		Help: "Total number of generated reports by type",
	}, []string{"type"})

	ReportBuildLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_build_latency_seconds",
		Help:    "Latency of building a report workbook",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	NotificationsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Total number of app notifications created",
	}, []string{"type"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_published_total",
		Help: "Total number of warehouse events published",
	}, []string{"event_type"})

	EventsHandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_handled_total",
		Help: "Total number of warehouse events handled by the notification worker",
	}, []string{"event_type", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
