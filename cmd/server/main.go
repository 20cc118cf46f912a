package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/procura/backend/internal/application/identity"
	procurementapp "github.com/procura/backend/internal/application/procurement"
	"github.com/procura/backend/internal/infrastructure/auth"
	"github.com/procura/backend/internal/infrastructure/config"
	"github.com/procura/backend/internal/infrastructure/event"
	"github.com/procura/backend/internal/infrastructure/logger"
	"github.com/procura/backend/internal/infrastructure/migration"
	"github.com/procura/backend/internal/infrastructure/persistence"
	"github.com/procura/backend/internal/infrastructure/storage"
	"github.com/procura/backend/internal/infrastructure/telemetry"
	"github.com/procura/backend/internal/interfaces/http/handler"
	"github.com/procura/backend/internal/interfaces/http/middleware"
	"github.com/procura/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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
		_ = log.Sync()
	}()

	log.Info("Starting Procura backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Background work (rate limiter cleanup, event bus) stops with this context
	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	tp, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(rootCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := mp.Meter("procura")

	lp, err := telemetry.NewLoggerProvider(rootCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingBasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingBasicAuthPassword,
		ProfileTypes:      cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Telemetry.SpanProfilesEnabled {
		tp.EnableSpanProfiles()
	}

	if cfg.Database.AutoMigrate {
		runMigrations(cfg, log)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		dbTracing.LogFullSQL = !cfg.IsProduction()
		if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	blacklist := newTokenBlacklist(rootCtx, cfg, log)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	requestRepo := persistence.NewGormRequestRepository(db.DB)

	// Event bus
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(procurementapp.NewNotificationHandler(log))
	workflowMetrics, err := telemetry.NewWorkflowMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create workflow metrics", zap.Error(err))
	}
	bus.Subscribe(workflowMetrics)
	if err := bus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Attachment storage
	var objectStorage procurementapp.ObjectStorage = storage.NewStubObjectStorage()
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(rootCtx); err != nil {
			log.Warn("Attachment bucket is not ready", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Info("Object storage disabled, upload URLs point at the stub host")
	}

	// Application services
	guard := identityapp.NewGuard(log)
	requestService := procurementapp.NewRequestService(requestRepo, vendorRepo, userRepo, bus, guard, log)
	requestQueries := procurementapp.NewRequestQueryService(requestRepo, userRepo, cfg.Workflow.MaxCostSentinel, log)
	vendorService := procurementapp.NewVendorService(vendorRepo, guard, log)
	attachmentService := procurementapp.NewAttachmentService(objectStorage, cfg.Storage.KeyPrefix, cfg.Storage.PresignExpiration, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, bus, guard, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tp.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profiling))
	engine.Use(httpMetrics)

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.IsProduction()
	engine.Use(middleware.SecureWithConfig(security))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var authLimit gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(
			middleware.NewRateLimiter(rootCtx, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		authLimit = middleware.RateLimit(
			middleware.NewRateLimiter(rootCtx, cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log

	healthHandler := handler.NewHealthHandler(db, version, log)
	engine.GET("/health", healthHandler.Health)

	r := router.NewRouter(engine, router.WithMiddleware(
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.TracingPrincipalInjector(),
	))
	router.RegisterAPI(r, router.Handlers{
		Requests: handler.NewRequestHandler(requestService, requestQueries, attachmentService),
		Vendors:  handler.NewVendorHandler(vendorService),
		Auth:     handler.NewAuthHandler(authService),
		Users:    handler.NewUserHandler(userService),
		Health:   healthHandler,
	}, authLimit)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(ctx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	stopBackground()
	if err := mp.Shutdown(ctx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := lp.Shutdown(ctx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}
}

// runMigrations applies pending migrations before the server opens its pool
func runMigrations(cfg *config.Config, log *zap.Logger) {
	m, err := migration.NewFromURL(cfg.Database.DSN(), cfg.Database.MigrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		_ = m.Close()
	}()
	if err := m.Up(); err != nil {
		log.Fatal("Migration up failed", zap.Error(err))
	}
}

// newTokenBlacklist connects to Redis when configured. Without Redis, revoked
// tokens are tracked in process memory and forgotten on restart.
func newTokenBlacklist(ctx context.Context, cfg *config.Config, log *zap.Logger) auth.TokenBlacklist {
	if cfg.Redis.Host == "" {
		log.Warn("Redis not configured, using in-memory token blacklist")
		return auth.NewInMemoryTokenBlacklist()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		_ = client.Close()
		return auth.NewInMemoryTokenBlacklist()
	}

	log.Info("Token blacklist backed by Redis", zap.String("addr", cfg.Redis.Addr()))
	return auth.NewRedisTokenBlacklist(client)
}
