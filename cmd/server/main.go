// Command server runs the stock transfer HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apptransfer "github.com/erp/stocktransfer/internal/application/transfer"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/infrastructure/auth"
	"github.com/erp/stocktransfer/internal/infrastructure/cache"
	"github.com/erp/stocktransfer/internal/infrastructure/config"
	"github.com/erp/stocktransfer/internal/infrastructure/event"
	"github.com/erp/stocktransfer/internal/infrastructure/logger"
	"github.com/erp/stocktransfer/internal/infrastructure/notification"
	"github.com/erp/stocktransfer/internal/infrastructure/persistence"
	"github.com/erp/stocktransfer/internal/infrastructure/storage"
	infrastrategy "github.com/erp/stocktransfer/internal/infrastructure/strategy"
	"github.com/erp/stocktransfer/internal/infrastructure/telemetry"
	"github.com/erp/stocktransfer/internal/interfaces/http/handler"
	"github.com/erp/stocktransfer/internal/interfaces/http/middleware"
	"github.com/erp/stocktransfer/internal/interfaces/http/router"
)

var version = "dev"

//	@title			Stock Transfer API
//	@version		1.0
//	@description	Moves stock between locations and keeps lot consumption and costs consistent
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log := logger.New(logCfg)

	providers, err := telemetry.NewProviders(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	if providers.IsEnabled() {
		// Mirror application logs into the OTLP log pipeline.
		log = logger.New(logCfg, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	}
	defer func() { _ = log.Sync() }()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		Tags:            map[string]string{"env": cfg.App.Env, "version": version},
	}, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", zap.Error(err))
	} else if profiler.IsEnabled() {
		providers.EnableSpanProfiles()
	}

	log.Info("Starting stock transfer service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh)))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			return fmt.Errorf("register db tracing: %w", err)
		}
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	service, err := newTransferService(ctx, cfg, db, providers, log)
	if err != nil {
		return err
	}

	idempotency, err := cache.NewIdempotencyStoreFactory(redisClient,
		cache.WithLogger(log),
		cache.WithKeyPrefix("stocktransfer:idem:"),
	).CreateStore(ctx)
	if err != nil {
		return fmt.Errorf("init idempotency store: %w", err)
	}

	bus := event.NewInMemoryEventBus(log)
	if cfg.Queue.Enabled {
		queue := asynq.NewClient(notification.RedisClientOpt(cfg.Redis))
		defer queue.Close()
		notifier := notification.NewAsynqNotifier(queue, cfg.Queue.Queue, cfg.Queue.MaxRetry)
		notify := event.NewIdempotentHandler(
			apptransfer.NewNotificationHandler(notifier, log),
			idempotency, log,
			event.WithKeyNamespace("notify"),
		)
		bus.Subscribe(notify, notify.EventTypes()...)
	}
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	service.SetEventPublisher(bus)

	engine, err := newEngine(cfg, log, service, db, redisClient, idempotency)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		errs := []error{srv.Shutdown(shutdownCtx), bus.Stop(shutdownCtx)}
		if profiler != nil {
			errs = append(errs, profiler.Stop())
		}
		errs = append(errs, providers.Shutdown(shutdownCtx))
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server exited")
	return nil
}

func newTransferService(ctx context.Context, cfg *config.Config, db *persistence.Database, providers *telemetry.Providers, log *zap.Logger) (*apptransfer.Service, error) {
	registry, err := infrastrategy.NewRegistryWithDefaults()
	if err != nil {
		return nil, fmt.Errorf("init strategies: %w", err)
	}
	metrics, err := telemetry.NewTransferMetrics(providers.Meter("stocktransfer"))
	if err != nil {
		return nil, fmt.Errorf("init transfer metrics: %w", err)
	}

	scope := apptransfer.NewRetryingScope(persistence.NewGormTransferScope(db.DB), apptransfer.RetryPolicy{
		MaxRetries: cfg.Transfer.MaxRetries,
		Timeout:    cfg.Transfer.UnitOfWorkTimeout,
		BaseDelay:  cfg.Transfer.RetryBaseDelay,
	}, log)
	scope.SetObserver(metrics)

	service := apptransfer.NewService(scope, persistence.NewGormTransferRepositories(db.DB), registry, log)
	service.SetMetrics(metrics)

	store, err := storage.New(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	if s3store, ok := store.(*storage.S3ObjectStorage); ok {
		if err := s3store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
	}
	service.SetObjectStorage(store, cfg.Storage.PresignExpiration)
	return service, nil
}

func newEngine(cfg *config.Config, log *zap.Logger, service *apptransfer.Service, db *persistence.Database, redisClient *redis.Client, idempotency shared.IdempotencyStore) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := router.Dependencies{
		Logger: log,
		JWT: middleware.JWTConfig{
			JWTService:  auth.NewJWTService(cfg.JWT),
			Revocations: auth.NewRedisRevocationList(redisClient),
			Settings: auth.BusinessSettings{
				AccountingMethod: cfg.Transfer.AccountingMethod,
				AllowOverselling: cfg.Transfer.AllowOverselling,
				EditDays:         cfg.Transfer.EditDays,
			},
			SkipPaths: []string{"/health"},
			Logger:    log,
		},
		Transfers: handler.NewTransferHandler(service),
		Stock:     handler.NewStockHandler(service),
		Health:    handler.NewHealthHandler(db),
	}
	if cfg.Idempotency.Enabled {
		deps.Idempotency = idempotency
	}

	return router.NewEngine(router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tracing:        cfg.Telemetry.Enabled,
		IdempotencyTTL: cfg.Idempotency.TTL,
		Production:     cfg.App.Env == "production",
		RateLimit: middleware.RateLimitConfig{
			Requests: cfg.HTTP.RateLimit,
			Window:   cfg.HTTP.RateWindow,
		},
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}, deps)
}
