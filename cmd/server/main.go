package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"carshare/internal/app"
	"carshare/internal/config"
	"carshare/internal/handler"
	internalRedis "carshare/internal/redis"
	"carshare/internal/repository/postgres"
	"carshare/internal/service"
	"carshare/internal/telegram"
)

func main() {
	// Initialize the global logger before anything else logs.
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			zap.S().Errorw("failed to initialize New Relic", "error", err)
			nrApp = nil
		} else {
			zap.S().Infow("New Relic enabled", "app", cfg.NewRelic.AppName)
		}
	}

	// Stripe uses a package-level key.
	stripe.Key = cfg.Stripe.SecretKey

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		zap.S().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()
	zap.S().Info("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		zap.S().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()
	zap.S().Info("connected to Redis")

	// Wire dependencies.
	server, sweeper := wireServer(db, redisClient, nrApp, cfg)

	// Start the overdue sweep schedule.
	if err := sweeper.Start(); err != nil {
		zap.S().Fatalw("failed to start overdue sweeper", "error", err)
	}
	defer sweeper.Stop()

	// Start server in goroutine.
	go func() {
		zap.S().Infow("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("server error", "error", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.S().Fatalw("server forced to shutdown", "error", err)
	}

	zap.S().Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// overdue sweeper (started and stopped by the caller).
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.OverdueSweeper) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	vehicleRepo := postgres.NewVehicleRepository(db)
	rentalRepo := postgres.NewRentalRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	txManager := postgres.NewTxManager(db)

	// Notifications go to Telegram when a bot token is configured,
	// otherwise to the structured log.
	var notifier service.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken)
	} else {
		notifier = service.NewLogNotifier()
	}
	notifications := service.NewNotificationService(notifier, cfg.Telegram.OpsChatID)

	// Initialize services.
	fleetService := service.NewFleetService(vehicleRepo, cacheStore)
	rentalService := service.NewRentalService(txManager, rentalRepo, customerRepo, lockStore, notifications)
	sessionProvider := service.NewStripeSessionProvider()
	paymentService := service.NewPaymentService(
		txManager, paymentRepo, rentalRepo, vehicleRepo, customerRepo,
		sessionProvider, lockStore, notifications, cfg.Server.BaseURL,
	)
	sweeper := service.NewOverdueSweeper(rentalRepo, notifications, cfg.Sweeper.Schedule)

	// Initialize handlers.
	vehicleHandler := handler.NewVehicleHandler(fleetService)
	rentalHandler := handler.NewRentalHandler(rentalService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		VehicleHandler: vehicleHandler,
		RentalHandler:  rentalHandler,
		PaymentHandler: paymentHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, sweeper
}
