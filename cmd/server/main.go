package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appsync "github.com/vitrina/backend/internal/application/sync"
	"github.com/vitrina/backend/internal/domain/sourcing"
	"github.com/vitrina/backend/internal/infrastructure/config"
	"github.com/vitrina/backend/internal/infrastructure/logger"
	"github.com/vitrina/backend/internal/infrastructure/persistence"
	"github.com/vitrina/backend/internal/infrastructure/scheduler"
	"github.com/vitrina/backend/internal/infrastructure/source"
	"github.com/vitrina/backend/internal/infrastructure/telemetry"
	"github.com/vitrina/backend/internal/interfaces/http/handler"
	"github.com/vitrina/backend/internal/interfaces/http/middleware"
	"github.com/vitrina/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting vitrina backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	log.Info("database connected")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("failed to register db tracing", zap.Error(err))
	}

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	manufacturerRepo := persistence.NewGormManufacturerRepository(db.DB)
	parameterRepo := persistence.NewGormParameterRepository(db.DB)
	optionRepo := persistence.NewGormParameterOptionRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	documentRepo := persistence.NewGormProductDocumentRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)

	// Vendor platform adapters, one per enabled source
	var adapters []sourcing.SourceAdapter
	var enabledPlatforms []sourcing.PlatformCode
	if cfg.Sources.Sitex.Enabled {
		adapters = append(adapters, source.NewSitexAdapter(cfg.Sources.Sitex, log))
		enabledPlatforms = append(enabledPlatforms, sourcing.PlatformCodeSitex)
	}
	if cfg.Sources.Webra.Enabled {
		adapters = append(adapters, source.NewWebraAdapter(cfg.Sources.Webra, log))
		enabledPlatforms = append(enabledPlatforms, sourcing.PlatformCodeWebra)
	}
	if cfg.Sources.Unitek.Enabled {
		adapters = append(adapters, source.NewUnitekAdapter(cfg.Sources.Unitek, log))
		enabledPlatforms = append(enabledPlatforms, sourcing.PlatformCodeUnitek)
	}
	log.Info("source adapters configured", zap.Int("count", len(adapters)))

	// Reconciliation services
	policy := appsync.Policy{ErrorsAsFailure: cfg.Sync.ErrorsAsFailure}
	recorder := appsync.NewAuditRecorder(syncLogRepo, policy, log)

	opts := appsync.DefaultOptions()
	opts.Policy = policy
	if cfg.Sync.BatchSize > 0 {
		opts.BatchSize = cfg.Sync.BatchSize
	}
	if cfg.Sync.SmallBatchSize > 0 {
		opts.SmallBatchSize = cfg.Sync.SmallBatchSize
	}
	if cfg.Sync.FlushEvery > 0 {
		opts.FlushEvery = cfg.Sync.FlushEvery
	}
	if cfg.Sync.BatchBudget > 0 {
		opts.BatchBudget = cfg.Sync.BatchBudget
	}
	if cfg.Sync.BatchPause > 0 {
		opts.BatchPause = cfg.Sync.BatchPause
	}

	syncService := appsync.NewCatalogSyncService(
		adapters,
		categoryRepo,
		manufacturerRepo,
		parameterRepo,
		optionRepo,
		productRepo,
		documentRepo,
		recorder,
		opts,
		log,
		tracerProvider.Tracer(telemetry.TracerName),
	)
	auditService := appsync.NewAuditService(syncLogRepo, productRepo)

	// Background workers
	if cfg.Sync.Enabled && len(enabledPlatforms) > 0 {
		syncScheduler := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
			Interval:  cfg.Sync.Interval,
			Platforms: enabledPlatforms,
		}, syncService, log)
		if err := syncScheduler.Start(ctx); err != nil {
			log.Fatal("failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := syncScheduler.Stop(stopCtx); err != nil {
				log.Error("error stopping sync scheduler", zap.Error(err))
			}
		}()
		log.Info("sync scheduler started",
			zap.Duration("interval", cfg.Sync.Interval),
			zap.Int("platforms", len(enabledPlatforms)))
	}

	stuckMonitor := scheduler.NewStuckRunMonitor(scheduler.StuckRunMonitorConfig{
		Interval:  cfg.Sync.MonitorInterval,
		Threshold: cfg.Sync.StuckThreshold,
	}, syncLogRepo, log)
	if err := stuckMonitor.Start(ctx); err != nil {
		log.Fatal("failed to start stuck run monitor", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := stuckMonitor.Stop(stopCtx); err != nil {
			log.Error("error stopping stuck run monitor", zap.Error(err))
		}
	}()

	// HTTP surface
	engine := router.NewEngine(cfg.HTTP, middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}, log)

	systemHandler := handler.NewSystemHandler(db)
	router.MountSystem(engine, systemHandler)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewSyncHandler(syncService, log)).
		Register(handler.NewAuditHandler(auditService)).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited gracefully")
}
