package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shoptrack/shoptrack/internal"
	"github.com/shoptrack/shoptrack/internal/auth"
	"github.com/shoptrack/shoptrack/internal/events"
	"github.com/shoptrack/shoptrack/internal/handler/api"
	"github.com/shoptrack/shoptrack/internal/jobs"
	"github.com/shoptrack/shoptrack/internal/middleware"
	"github.com/shoptrack/shoptrack/internal/repository"
	"github.com/shoptrack/shoptrack/internal/router"
	"github.com/shoptrack/shoptrack/internal/routes"
	"github.com/shoptrack/shoptrack/internal/service"
	"github.com/shoptrack/shoptrack/internal/telemetry"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize repository store
	store := repository.NewStore(pool)

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics(cfg.MetricsNamespace)
	businessMetrics := telemetry.NewBusinessMetrics(cfg.MetricsNamespace, metrics.Registerer())

	// Initialize token manager
	tokens, err := auth.NewTokenManager(cfg.TokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	// Initialize event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsUrl != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NatsUrl, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = natsPublisher
		logger.Info("Event publisher connected", "url", cfg.NatsUrl)
	} else {
		logger.Info("NATS_URL not set, cart events will not be published")
	}
	defer publisher.Close()

	// Initialize services
	userService := service.NewUserService(store, tokens, logger)
	productService := service.NewProductService(store, logger)
	cartService := service.NewCartService(store, publisher, businessMetrics, logger)
	analyticsService := service.NewAnalyticsService(store, logger)

	// Configure rate limiting for auth endpoints
	authRateLimiter := middleware.NewRateLimiter(middleware.AuthRateLimiterConfig())
	defer authRateLimiter.Stop()

	// Build route dependencies
	deps := routes.APIDeps{
		AuthHandler:      api.NewAuthHandler(userService, businessMetrics, logger),
		ProductHandler:   api.NewProductHandler(productService, logger),
		CartHandler:      api.NewCartHandler(cartService, logger),
		AnalyticsHandler: api.NewAnalyticsHandler(analyticsService, logger),
		HealthHandler:    api.NewHealthHandler(pool),
		TokenVerifier:    tokens,
		MetricsHandler:   metrics.Handler(),
		AuthRateLimit:    authRateLimiter.Middleware,
	}

	// Create router and register routes
	r := router.New(
		middleware.RequestID,
		metrics.Middleware,
		middleware.WithRequestLogger(logger),
		router.Recovery(logger),
		router.CORS(cfg.CorsOrigins),
	)
	routes.RegisterAPI(r, deps)

	// Start abandoned cart sweeper
	sweeper := jobs.NewSweeper(store, publisher, businessMetrics, jobs.SweeperConfig{
		Interval: cfg.SweepInterval,
		MaxAge:   cfg.CartMaxIdle,
	}, logger)
	go sweeper.Start(ctx)

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
