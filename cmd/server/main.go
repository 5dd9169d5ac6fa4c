package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/config"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	bookingEvents "github.com/shareit/service-booking/internal/events"
	"github.com/shareit/service-booking/internal/handler"
	"github.com/shareit/service-booking/internal/platform/database"
	"github.com/shareit/service-booking/internal/platform/health"
	"github.com/shareit/service-booking/internal/platform/idempotency"
	"github.com/shareit/service-booking/internal/platform/kafka"
	"github.com/shareit/service-booking/internal/platform/logger"
	"github.com/shareit/service-booking/internal/platform/metrics"
	"github.com/shareit/service-booking/internal/platform/middleware"
	"github.com/shareit/service-booking/internal/repository"
	"github.com/shareit/service-booking/migrations"
)

const serviceName = "service-booking"

type repositories struct {
	bookings bookingDomain.BookingRepository
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	comments commentDomain.CommentRepository
}

type publisher interface {
	application.EventPublisher
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("store", cfg.Store),
	)

	checks := map[string]health.Checker{}

	// Initialize repositories
	var repos repositories
	switch cfg.Store {
	case config.StoreMemory:
		store := repository.NewMemoryStore()
		repos = repositories{bookings: store.Bookings, items: store.Items, users: store.Users, comments: store.Comments}
		log.Warn("using in-memory store; data is lost on restart")

	default:
		db, err := database.Connect(cfg.DBConfig.DSN(), log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}

		// Run database migrations
		if cfg.AppEnv == "development" {
			if err := db.AutoMigrate(
				&repository.UserModel{},
				&repository.ItemModel{},
				&repository.BookingModel{},
				&repository.CommentModel{},
			); err != nil {
				log.Fatal("failed to run auto-migration", zap.Error(err))
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), migrations.FS, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to get sql.DB", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()
		checks["postgres"] = sqlDB

		repos = repositories{
			bookings: repository.NewGormBookingRepository(db),
			items:    repository.NewGormItemRepository(db),
			users:    repository.NewGormUserRepository(db),
			comments: repository.NewGormCommentRepository(db),
		}
	}

	// Initialize Kafka producer
	var producer publisher
	if cfg.KafkaConfig.Enabled() {
		producer = kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	} else {
		producer = kafka.NewNopProducer(log)
		log.Warn("kafka brokers not configured; events are dropped")
	}
	defer func() { _ = producer.Close() }()

	// Initialize application services
	availabilityService := application.NewAvailabilityService(repos.bookings)
	bookingService := application.NewBookingService(repos.bookings, repos.items, repos.users, producer, log)
	commentService := application.NewCommentService(repos.bookings, repos.items, repos.users, repos.comments, producer, log)
	itemService := application.NewItemService(repos.items, repos.users, repos.comments, availabilityService, log)
	directoryService := application.NewDirectoryService(repos.users, repos.items, log)

	// Start catalog event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.KafkaConfig.Enabled() {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		catalogConsumer := bookingEvents.NewCatalogEventConsumer(cfg.KafkaConfig.Brokers, groupID, directoryService, log)
		defer func() { _ = catalogConsumer.Close() }()

		go func() {
			log.Info("starting catalog event consumer")
			if err := catalogConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("catalog event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	metrics.Register()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.HTTPConfig.CORSOrigins, cfg.HTTPConfig.UserIDHeader))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(metrics.Middleware())

	// Redis-backed idempotency for POST requests
	var idempotencyMW gin.HandlerFunc
	if cfg.RedisConfig.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer func() { _ = rdb.Close() }()
		checks["redis"] = health.CheckFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		idempotencyMW = idempotency.Middleware(rdb, cfg.RedisConfig.IdempotencyTTL, cfg.HTTPConfig.UserIDHeader, log)
	}

	// Register health check and metrics routes
	health.NewHandler(serviceName, checks).RegisterRoutes(router)
	router.GET("/metrics", metrics.Handler())

	// Register admin handler routes
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(router.Group("/api/v1"), cfg.HTTPConfig.AdminToken)

	// Register routes
	api := router.Group("/api/v1")
	api.Use(middleware.CallerIDMiddleware(cfg.HTTPConfig.UserIDHeader))
	if idempotencyMW != nil {
		api.Use(idempotencyMW)
	}
	handler.NewBookingHandler(bookingService).RegisterRoutes(api)
	handler.NewItemHandler(itemService, commentService).RegisterRoutes(api)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
