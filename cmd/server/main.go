package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehouse-service/config"
	"warehouse-service/internal/api"
	"warehouse-service/internal/broker"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/service"
	"warehouse-service/internal/settings"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"
	"warehouse-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// schemaInitTimeout also bounds the schema lock, so the lock cannot expire
// while its holder is still initializing.
const schemaInitTimeout = time.Minute

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting warehouse service")

	tp, err := util.InitTracer("warehouse-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer: %v", err)
			}
		}()
	}

	db, err := store.NewStore(cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	// Redis is optional. Without it report idempotency keys are ignored and
	// redelivered events are not deduplicated.
	var (
		redisClient *redisclient.Client
		idempotency service.IdempotencyStore
		deduper     worker.Deduper
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		idempotency = redisClient
		deduper = redisClient
		logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	if err := initSchema(db, redisClient); err != nil {
		logger.Fatal("Failed to initialize database schema", zap.Error(err))
	}
	logger.Info("Database schema ready")

	settingsService := settings.NewService(db)
	notificationService := service.NewNotificationService(db)

	var consumer *broker.Consumer
	if cfg.Kafka.Enabled {
		consumer = broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	}
	notificationWorker := worker.NewNotificationWorker(consumer, notificationService, settingsService, deduper)

	var sink broker.Sink
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		sink = producer
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		sink = broker.NewLocalSink(notificationWorker.Handler())
		logger.Info("Kafka disabled, dispatching events in-process")
	}
	eventPublisher := broker.NewEventPublisher(sink)

	services := api.Services{
		Zones:         service.NewZoneService(db, eventPublisher),
		Products:      service.NewProductService(db, eventPublisher),
		Shipments:     service.NewShipmentService(db, eventPublisher),
		Audits:        service.NewAuditService(db, eventPublisher),
		Orders:        service.NewOrderService(db, eventPublisher),
		Users:         service.NewUserService(db),
		Notifications: notificationService,
		Reports:       service.NewReportService(db, settingsService, notificationService, idempotency, eventPublisher),
		Dashboard:     service.NewDashboardService(db, settingsService),
		Settings:      settingsService,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if consumer != nil {
		go func() {
			if err := notificationWorker.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Notification worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, db)
	err = handler.SetupRoutes(router, api.RouterOptions{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimit:      cfg.HTTP.RateLimit,
	})
	if err != nil {
		logger.Fatal("Failed to set up routes", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if err := notificationWorker.Stop(); err != nil {
		logger.Error("Failed to stop notification worker", zap.Error(err))
	}

	logger.Info("Server exited")
}

// initSchema applies the schema and default settings. With Redis available,
// replicas starting together take turns.
func initSchema(db *store.Store, redisClient *redisclient.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), schemaInitTimeout)
	defer cancel()

	apply := func() error {
		return db.InitSchema(ctx, settings.Defaults())
	}
	if redisClient == nil {
		return apply()
	}
	return redisClient.WithLock(ctx, "schema-init", schemaInitTimeout, apply)
}
