package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"warehouse-service/internal/service"
	"warehouse-service/internal/settings"
	"warehouse-service/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the HTTP layer delegates to
type Services struct {
	Zones         *service.ZoneService
	Products      *service.ProductService
	Shipments     *service.ShipmentService
	Audits        *service.AuditService
	Orders        *service.OrderService
	Users         *service.UserService
	Notifications *service.NotificationService
	Reports       *service.ReportService
	Dashboard     *service.DashboardService
	Settings      *settings.Service
}

// RouterOptions configures the middleware stack
type RouterOptions struct {
	AllowedOrigins []string
	// RateLimit uses the limiter format, e.g. "600-M". Empty disables it.
	RateLimit string
}

// Handler contains HTTP handlers
type Handler struct {
	svc    Services
	db     Pinger
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, db Pinger) *Handler {
	return &Handler{
		svc:    svc,
		db:     db,
		logger: util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine, opts RouterOptions) error {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(accessLog(h.logger))
	router.Use(corsMiddleware(opts.AllowedOrigins))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	if opts.RateLimit != "" {
		rate, err := limiter.NewRateFromFormatted(opts.RateLimit)
		if err != nil {
			return fmt.Errorf("invalid rate limit %q: %w", opts.RateLimit, err)
		}
		apiGroup.Use(mgin.NewMiddleware(limiter.New(memory.NewStore(), rate)))
	}

	apiGroup.GET("/dashboard-stats", h.dashboardStats)

	zones := apiGroup.Group("/warehouse-zones")
	{
		zones.GET("", h.listZones)
		zones.GET("/:id", h.getZone)
		zones.POST("", h.createZone)
		zones.PUT("/:id", h.updateZone)
		zones.PATCH("/:id", h.updateZone)
		zones.DELETE("/:id", h.deleteZone)
	}
	apiGroup.PATCH("/zones/:id/stock", h.adjustZoneStock)

	products := apiGroup.Group("/products")
	{
		products.GET("", h.listProducts)
		products.POST("", h.upsertProduct)
		products.DELETE("/:id", h.deleteProduct)
	}

	incoming := apiGroup.Group("/incoming-shipments")
	{
		incoming.GET("", h.listIncoming)
		incoming.POST("", h.createIncoming)
		incoming.PUT("/:id", h.updateIncoming)
		incoming.DELETE("/:id", h.deleteIncoming)
	}

	outgoing := apiGroup.Group("/outgoing-shipments")
	{
		outgoing.GET("", h.listOutgoing)
		outgoing.POST("", h.createOutgoing)
		outgoing.PUT("/:id", h.updateOutgoing)
		outgoing.DELETE("/:id", h.deleteOutgoing)
	}

	audits := apiGroup.Group("/inventory-audits")
	{
		audits.GET("", h.listAudits)
		audits.POST("", h.scheduleAudit)
		audits.PUT("/:id", h.updateAudit)
		audits.DELETE("/:id", h.deleteAudit)
	}

	orders := apiGroup.Group("/orders")
	{
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)
		orders.POST("", h.createOrder)
		orders.PUT("/:id", h.updateOrder)
		orders.DELETE("/:id", h.deleteOrder)
	}

	users := apiGroup.Group("/users")
	{
		users.GET("", h.listUsers)
		users.POST("", h.createUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}

	appNotifications := apiGroup.Group("/app-notifications")
	{
		appNotifications.GET("", h.listAppNotifications)
		appNotifications.POST("", h.createAppNotification)
		appNotifications.PUT("/read-all", h.markAllAppNotificationsRead)
		appNotifications.PUT("/:id/read", h.markAppNotificationRead)
		appNotifications.DELETE("/:id", h.deleteAppNotification)
	}

	feed := apiGroup.Group("/notifications")
	{
		feed.GET("", h.listFeed)
		feed.GET("/unread-count", h.unreadCount)
		feed.PUT("/mark-all-read", h.markAllFeedRead)
		feed.PUT("/:id/read", h.markFeedItemRead)
	}

	// The group routes must be registered before the generic key route.
	cfg := apiGroup.Group("/settings")
	{
		cfg.GET("", h.getAllSettings)
		cfg.PUT("", h.putAllSettings)
		for _, g := range []settings.Group{settings.GroupGeneral, settings.GroupWarehouse, settings.GroupNotifications} {
			cfg.GET("/"+string(g), h.getSettingsGroup(g))
			cfg.PUT("/"+string(g), h.putSettingsGroup(g))
		}
		cfg.GET("/:key", h.getSetting)
		cfg.PUT("/:key", h.putSetting)
	}

	reports := apiGroup.Group("/reports")
	{
		reports.GET("/overview", h.reportOverview)
		reports.GET("/overview-stats", h.reportOverview)
		reports.GET("/types", h.reportTypes)
		reports.GET("/recent", h.recentReports)
		reports.POST("/generate", h.generateReport)
		reports.GET("/download/:id", h.downloadReport)
		reports.POST("/share", h.shareReport)
	}

	return nil
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only when the database answers
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// accessLog writes one line per request
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "Idempotency-Key")
	cfg.ExposeHeaders = []string{"Content-Disposition"}
	return cors.New(cfg)
}
