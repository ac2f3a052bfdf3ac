package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/audit"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/logging"
	"storefront/internal/migrations"
	"storefront/internal/redis"
	"storefront/internal/repository"
	"storefront/internal/services"
	"storefront/pkg/resend"
	"storefront/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	err = migrations.RunMigrations(ctx, db, migrations.SeedOptions{
		AdminEmail:    cfg.AdminSeedEmail,
		AdminPassword: cfg.AdminSeedPassword,
		NotifyEmail:   cfg.AdminEmail,
		NotifyPhone:   cfg.WhatsAppAdminPhone,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	store := repository.NewStore(db)
	checks := map[string]handlers.Pinger{"database": store}

	// Initialize Redis
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.Initialize(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Failed to connect to Redis, carts and checkout idempotency are disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			checks["redis"] = redisClient
		}
	} else {
		logger.Warn("REDIS_URL not set, carts and checkout idempotency are disabled")
	}

	// Audit trail
	var recorder audit.Recorder = audit.Nop{}
	if cfg.MongoDBURI != "" {
		mongoRecorder, err := audit.NewMongoRecorder(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase, cfg.MongoDBCollection)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoRecorder.Close(context.Background())
		recorder = mongoRecorder
		checks["mongodb"] = mongoRecorder
	}

	// Notification channels
	var mailer services.Mailer
	if cfg.ResendAPIKey != "" {
		resendClient, err := resend.NewClient(cfg.ResendAPIURL, cfg.ResendAPIKey)
		if err != nil {
			logger.Fatal("Failed to create email client", zap.Error(err))
		}
		mailer = resendClient
	}
	var messenger services.Messenger
	if cfg.WhatsAppAPIURL != "" {
		messenger = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	}
	notifier := services.NewNotificationService(mailer, messenger, services.NotificationConfig{
		From:          cfg.MailFrom,
		FallbackEmail: cfg.AdminEmail,
		FallbackPhone: cfg.WhatsAppAdminPhone,
	}, logger.Named("notifications"))

	// Initialize services
	userService := services.NewUserService(store, logger)
	orderService := services.NewOrderService(store, notifier, recorder, logger, services.OrderServiceOptions{
		NotifyTimeout: cfg.NotifyTimeout,
	})
	posService := services.NewPOSService(store, recorder, logger)
	catalogService := services.NewCatalogService(store, logger)
	couponService := services.NewCouponService(store, logger)
	storeService := services.NewStoreService(store, logger)

	httpLogger := logger.Named("http")
	orderOpts := handlers.OrderHandlerOptions{
		IdempotencyTTL: cfg.IdempotencyTTL,
		WebhookSecret:  cfg.PaymentWebhookSecret,
	}
	var cartHandler *handlers.CartHandler
	if redisClient != nil {
		cartService := services.NewCartService(redisClient, store, cfg.CartTTL, logger)
		cartHandler = handlers.NewCartHandler(cartService, httpLogger)
		orderOpts.Carts = cartService
		orderOpts.Idempotency = redisClient
	}

	gin.SetMode(cfg.GinMode)
	router := handlers.NewRouter(handlers.Dependencies{
		Orders:     handlers.NewOrderHandler(orderService, httpLogger, orderOpts),
		POS:        handlers.NewPOSHandler(posService, httpLogger),
		Catalog:    handlers.NewCatalogHandler(catalogService, httpLogger),
		Coupons:    handlers.NewCouponHandler(couponService, httpLogger),
		Carts:      cartHandler,
		Users:      handlers.NewUserHandler(userService, httpLogger),
		API:        handlers.NewAPIHandler(storeService, checks, httpLogger),
		UserLookup: userService,
		Logger:     httpLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
