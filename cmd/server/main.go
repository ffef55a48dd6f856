package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/tourvia/commission-service/internal/adapters/postgres"
	"github.com/tourvia/commission-service/internal/adapters/rates"
	"github.com/tourvia/commission-service/internal/adapters/zaplog"
	"github.com/tourvia/commission-service/internal/auth"
	"github.com/tourvia/commission-service/internal/config"
	"github.com/tourvia/commission-service/internal/domain/ports"
	"github.com/tourvia/commission-service/internal/handlers"
	"github.com/tourvia/commission-service/internal/services/adjustment"
	"github.com/tourvia/commission-service/internal/services/ledger"
	"github.com/tourvia/commission-service/internal/services/relationship"
	"github.com/tourvia/commission-service/internal/services/settlement"
	"github.com/tourvia/commission-service/pkg/observability"
	"github.com/tourvia/commission-service/pkg/resilience"
	"github.com/tourvia/commission-service/pkg/shutdown"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	var zapLogger *zap.Logger
	if cfg.Logger.Development {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	defer zapLogger.Sync()
	logger := zaplog.New(zapLogger)

	ctx := context.Background()
	if err := resolveSecrets(ctx, cfg, zapLogger); err != nil {
		zapLogger.Fatal("resolve secrets", zap.Error(err))
	}

	// Database
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		zapLogger.Fatal("parse database config", zap.Error(err))
	}
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		zapLogger.Fatal("connect to database", zap.Error(err))
	}
	if err := pool.Ping(ctx); err != nil {
		zapLogger.Fatal("ping database", zap.Error(err))
	}
	db := postgres.NewDBExecutor(pool)

	// Redis rate cache (optional)
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("redis unavailable, rate cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	// Rate source: HTTP adapter, wrapped with the redis cache when available
	rateConfig := rates.DefaultHTTPAdapterConfig(cfg.RateTable.BaseURL)
	rateConfig.Timeout = cfg.RateTable.Timeout
	var rateSource ports.RateSource = rates.NewHTTPAdapter(rateConfig, logger)
	if redisClient != nil {
		rateSource = rates.NewCachedAdapter(rateSource, redisClient, cfg.Redis.CacheTTL, logger)
	}

	// Repositories
	profileRepo := postgres.NewProfileRepository(db)
	relationRepo := postgres.NewRelationRepository(db)
	saleRepo := postgres.NewSaleRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	adjustmentRepo := postgres.NewAdjustmentRepository(db)
	settlementRepo := postgres.NewSettlementRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Services
	relationshipService := relationship.NewService(db, profileRepo, relationRepo, auditRepo, logger)
	ledgerService := ledger.NewService(db, saleRepo, ledgerRepo, auditRepo,
		relationshipService, rateSource, cfg.RateTable.Jurisdiction, logger)
	adjustmentService := adjustment.NewService(db, ledgerRepo, adjustmentRepo, auditRepo, logger)
	settlementService := settlement.NewService(db, ledgerRepo, settlementRepo, auditRepo,
		cfg.Settlement.Workers, logger)

	// Auth
	authManager, err := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer,
		cfg.Auth.JWTAudience, cfg.Auth.AccessTokenTTL)
	if err != nil {
		zapLogger.Fatal("init auth", zap.Error(err))
	}

	// HTTP API
	timeouts := resilience.DefaultTimeoutConfig()
	h := handlers.New(ledgerService, adjustmentService, settlementService, relationshipService, zapLogger)
	router := handlers.NewRouter(h, authManager, zapLogger, handlers.RouterConfig{
		IsDevelopment:  cfg.Logger.Development,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Timeouts:       timeouts,
	})
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics and health
	healthChecker := observability.NewHealthChecker(pool, redisClient)
	metricsServer := observability.StartMetricsServer(fmt.Sprintf("%d", cfg.Server.MetricsPort), healthChecker)

	// Optional built-in monthly settlement trigger
	var scheduler *settlement.Scheduler
	if cfg.Settlement.AutoRun {
		scheduler = settlement.NewScheduler(settlementService, timeouts, zapLogger)
		scheduler.Start()
	}

	go func() {
		zapLogger.Info("server listening",
			zap.String("addr", server.Addr),
			zap.Int("metrics_port", cfg.Server.MetricsPort),
			zap.Bool("settlement_auto_run", cfg.Settlement.AutoRun))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown, LIFO: scheduler and server first, pool last
	shutdownManager := shutdown.NewManager(zapLogger, 30*time.Second)
	shutdownManager.RegisterNoErr("database-pool", pool.Close)
	if redisClient != nil {
		shutdownManager.RegisterCloser("redis", redisClient)
	}
	shutdownManager.RegisterFunc("metrics-server", func() error {
		return observability.ShutdownMetricsServer(metricsServer)
	})
	shutdownManager.RegisterHTTPServer("http-server", server)
	if scheduler != nil {
		shutdownManager.Register("settlement-scheduler", scheduler.Shutdown)
	}
	shutdownManager.WaitForShutdown()
}
