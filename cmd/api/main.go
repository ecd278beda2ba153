package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/docs"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/config"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/database"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/http/handler"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/http/middleware"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/http/router"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/lock"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/logger"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/notify"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/wage"
)

// @title DSQUA Construction CRM API
// @version 1.0
// @description Backend for construction project, workforce, procurement, payment milestone and sales lead management
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@dsqua.in

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	switch basicCfg.App.Environment {
	case "staging", "production":
		if host := os.Getenv("SWAGGER_HOST"); host != "" {
			docs.SwaggerInfo.Host = host
		}
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In development secrets come from the environment,
	// in staging/production from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		log.Info("Database schema auto-migrated")
	}

	// Entity locks: Redis when replicas share state, in-process otherwise
	var (
		locker      lock.Locker
		redisPinger handler.Pinger
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisLocker := lock.NewRedisLocker(redisClient, lock.RedisOptions{
			Prefix: cfg.Redis.LockPrefix,
			TTL:    cfg.Redis.LockTTLDuration(),
		}, log)
		if err := redisLocker.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		locker = redisLocker
		redisPinger = redisLocker
		log.Info("Redis entity locks enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		locker = lock.NewKeyedMutex()
		log.Info("Using in-process entity locks")
	}
	locker = lock.WithWait(locker, cfg.Redis.LockWaitDuration())

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	wageRepo := repository.NewWageLogRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	vendorOrderRepo := repository.NewVendorOrderRepository(db)
	rawOrderRepo := repository.NewRawMaterialOrderRepository(db)
	paymentRepo := repository.NewLedgerPaymentRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	partPaymentRepo := repository.NewPartPaymentRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	leadHistoryRepo := repository.NewLeadStageHistoryRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Notifications are always stored in-app and optionally mailed
	var dispatcher notify.Dispatcher = notify.NewInAppDispatcher(notificationRepo)
	if cfg.Email.Enabled && cfg.Email.ResendAPIKey != "" {
		sender := notify.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
		dispatcher = notify.NewMultiDispatcher(dispatcher, notify.NewEmailDispatcher(userRepo, sender, log))
		log.Info("E-mail notifications enabled", zap.String("from", cfg.Email.FromEmail))
	}

	tokens := auth.NewTokenManager(&cfg.Auth)
	catalog := cfg.BuildCatalog()

	// Initialize services
	userService := service.NewUserService(userRepo, tokens, log)
	projectService := service.NewProjectService(db, projectRepo, userRepo, catalog, locker, log)
	wageService := service.NewWageService(db, wageRepo, projectService, wage.NewCalculator(wage.DefaultRates()), locker, log)
	materialService := service.NewMaterialService(db, materialRepo, paymentRepo, projectService, locker, log)
	vendorService := service.NewVendorService(db, vendorRepo, vendorOrderRepo, paymentRepo, projectService, locker, log)
	rawMaterialService := service.NewRawMaterialService(db, rawOrderRepo, paymentRepo, projectService, locker, log)
	milestoneService := service.NewMilestoneService(db, milestoneRepo, partPaymentRepo, projectRepo, projectService, dispatcher, locker, log)
	leadService := service.NewLeadService(db, leadRepo, leadHistoryRepo, followUpRepo, projectRepo, projectService, dispatcher, locker, log)
	analyticsService := service.NewAnalyticsService(projectRepo, milestoneRepo, partPaymentRepo, materialRepo,
		vendorOrderRepo, rawOrderRepo, paymentRepo, wageRepo, projectService, cfg.App.Location(), log)
	notificationService := service.NewNotificationService(notificationRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(tokens, cfg.ApiKey.Value, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(nil, log)

	rt := router.NewRouter(cfg, log, authMiddleware, rateLimiter, auditMiddleware, router.Handlers{
		Health:       handler.NewHealthHandler(db, redisPinger, log),
		Auth:         handler.NewAuthHandler(userService, catalog, log),
		User:         handler.NewUserHandler(userService, log),
		Project:      handler.NewProjectHandler(projectService, log),
		Wage:         handler.NewWageHandler(wageService, log),
		Material:     handler.NewMaterialHandler(materialService, log),
		Vendor:       handler.NewVendorHandler(vendorService, log),
		RawMaterial:  handler.NewRawMaterialHandler(rawMaterialService, log),
		Milestone:    handler.NewMilestoneHandler(milestoneService, log),
		Lead:         handler.NewLeadHandler(leadService, log),
		Analytics:    handler.NewAnalyticsHandler(analyticsService, log),
		Notification: handler.NewNotificationHandler(notificationService, log),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn("Error closing redis connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
