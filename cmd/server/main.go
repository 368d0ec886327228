package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/catalog"
	"github.com/artcase/storefront/internal/infrastructure/artapi"
	"github.com/artcase/storefront/internal/infrastructure/auth"
	"github.com/artcase/storefront/internal/infrastructure/config"
	"github.com/artcase/storefront/internal/infrastructure/logger"
	"github.com/artcase/storefront/internal/infrastructure/storage"
	"github.com/artcase/storefront/internal/infrastructure/telemetry"
	"github.com/artcase/storefront/internal/interfaces/http/handler"
	"github.com/artcase/storefront/internal/interfaces/http/middleware"
	"github.com/artcase/storefront/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// authAttemptsPerWindow throttles login and registration per client IP
const authAttemptsPerWindow = 10

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()

	// OpenTelemetry: traces, metrics, and the zap log bridge
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdown(log, "logger provider", loggerProvider.Shutdown)
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Telemetry.LogsLevel))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilerEnabled,
		ServerAddress:     cfg.Telemetry.ProfilerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilerUser,
		BasicAuthPassword: cfg.Telemetry.ProfilerPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting ArtCase storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	metrics, err := telemetry.NewStorefrontMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register storefront metrics", zap.Error(err))
	}

	// Durable storage for carts and sessions
	backend, err := storage.NewFactory(cfg,
		storage.WithLogger(log),
		storage.WithTracing(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}),
	).Create()
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("Error closing storage", zap.Error(err))
		}
	}()

	// Remote art service, or the built-in catalog when offline
	var (
		products  storefront.ProductSource
		authn     storefront.Authenticator
		publisher storefront.Publisher
	)
	if cfg.ArtAPI.Offline {
		log.Warn("Art API offline mode: serving the sample catalog; login and publishing are unavailable")
		products = storefront.NewStaticSource(catalog.SampleProducts())
		authn = offlineService{}
		publisher = offlineService{}
	} else {
		client, err := artapi.NewClient(artapi.Config{
			BaseURL: cfg.ArtAPI.BaseURL,
			Timeout: cfg.ArtAPI.Timeout,
		}, artapi.WithLogger(log), artapi.WithMetrics(metrics))
		if err != nil {
			log.Fatal("Failed to create art API client", zap.Error(err))
		}
		products, authn, publisher = client, client, client
	}

	// Per-profile state
	registry := storefront.NewRegistry(backend.Store,
		storefront.WithRegistryLogger(log),
		storefront.WithRegistryMetrics(metrics),
	)

	// Application services
	catalogService := storefront.NewCatalogService(products, log)
	authService := storefront.NewAuthService(authn, log)
	checkoutService := storefront.NewCheckoutService(cfg.Checkout.PaymentDelay,
		storefront.WithCheckoutLogger(log),
		storefront.WithCheckoutMetrics(metrics),
	)
	adminService := storefront.NewAdminService(publisher, 0, log)

	tokens := auth.NewProfileTokenService(cfg.Profile)
	if tokens.IsEphemeral() {
		log.Warn("profile.secret is not set; profile cookies will not survive a restart")
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var limiter, authLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	authLimiter = middleware.NewRateLimiter(authAttemptsPerWindow, cfg.HTTP.RateLimitWindow)
	defer authLimiter.Stop()

	tracing := middleware.DefaultTracingConfig()
	tracing.ServiceName = cfg.Telemetry.ServiceName
	tracing.Enabled = cfg.Telemetry.Enabled

	var requestMeter = meter
	if !meterProvider.IsEnabled() {
		requestMeter = nil
	}

	engine := router.NewEngine(router.Options{
		Logger: log,
		HTTP:   cfg.HTTP,
		Profiles: middleware.ProfileMiddlewareConfig{
			Tokens:    tokens,
			Registry:  registry,
			Cookie:    cfg.Cookie,
			SkipPaths: []string{router.HealthPath},
			Logger:    log,
		},
		Tracing:     tracing,
		Meter:       requestMeter,
		Profiling:   profiler.IsEnabled(),
		Limiter:     limiter,
		AuthLimiter: authLimiter,
		Handlers: router.Handlers{
			Catalog:  handler.NewCatalogHandler(catalogService),
			Cart:     handler.NewCartHandler(catalogService),
			Auth:     handler.NewAuthHandler(authService),
			Checkout: handler.NewCheckoutHandler(checkoutService),
			Admin:    handler.NewAdminHandler(adminService),
			System: handler.NewSystemHandler(cfg.App.Name, map[string]handler.HealthChecker{
				"storage": backend,
			}),
		},
	})

	// Evict idle profiles; their carts and sessions stay in storage
	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	go evictIdleProfiles(evictCtx, registry, cfg.Profile.IdleTimeout, log)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func evictIdleProfiles(ctx context.Context, registry *storefront.Registry, maxIdle time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.EvictIdle(maxIdle); n > 0 {
				log.Debug("Evicted idle profiles", zap.Int("count", n), zap.Int("live", registry.Len()))
			}
		}
	}
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
