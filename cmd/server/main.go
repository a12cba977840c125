// Package main is the entry point for the colisflow API server.
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

	"colisflow/internal/config"
	"colisflow/internal/domain/audit"
	"colisflow/internal/domain/auth"
	"colisflow/internal/domain/cash"
	"colisflow/internal/domain/parcel"
	v1 "colisflow/internal/infrastructure/http/v1"
	"colisflow/internal/infrastructure/http/v1/middleware"
	"colisflow/internal/infrastructure/storage/postgres"
	"colisflow/internal/infrastructure/storage/postgres/auth_repo"
	"colisflow/internal/infrastructure/storage/postgres/cash_repo"
	"colisflow/internal/infrastructure/storage/postgres/parcel_repo"
	"colisflow/internal/infrastructure/storage/redis"
	"colisflow/pkg/logger"
	"colisflow/pkg/numerator"
)

const idempotencyTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		Service:     "colisflow-server",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting colisflow server", "env", cfg.AppEnv)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	txManager := postgres.NewTxManager(pool)
	numbers := numerator.NewWithQuerier(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	if cfg.Auth.TokenTTL > 0 {
		jwtConfig.AccessTokenTTL = cfg.Auth.TokenTTL
	}
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(auth_repo.NewUserRepo(txManager), jwtService)

	// --- Parcels ---
	parcelService := parcel.NewService(parcel_repo.NewRepo(txManager), numbers)

	// --- Cash ---
	opts := []cash.Option{cash.WithOpeningPolicy(cash.OpeningPolicy(cfg.Cash.OpeningPolicy))}
	if cfg.Redis.Addr != "" {
		redisOpts := redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.LockTTL,
		}
		client, err := redis.NewClient(ctx, redisOpts)
		if err != nil {
			log.Fatalw("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		}
		defer func() { _ = client.Close() }()

		opts = append(opts, cash.WithLocker(redis.NewRegisterLocker(client, redisOpts)))
		log.Infow("register locking via redis enabled", "addr", cfg.Redis.Addr)
	}
	cashService := cash.NewService(cash_repo.NewRepo(txManager), txManager, numbers, parcelService, opts...)

	// --- Audit ---
	auditStore, err := postgres.NewAuditStore(txManager, cfg.Audit.CompressThreshold)
	if err != nil {
		log.Fatalw("failed to create audit store", "error", err)
	}
	auditWriter := audit.NewWriter(auditStore, audit.WriterConfig{
		QueueSize:    cfg.Audit.QueueSize,
		Workers:      cfg.Audit.Workers,
		WriteTimeout: 5 * time.Second,
	}, log)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:        log,
		Database:      pool,
		JWTValidator:  jwtService,
		AuthService:   authService,
		CashService:   cashService,
		ParcelService: parcelService,
		AuditSink:     auditWriter,
		AuditStats:    auditWriter,
		AuditLister:   auditStore,
		AuditOptions:  middleware.AuditConfig{IncludeReads: cfg.Audit.IncludeReads},
		Idempotency:   postgres.NewIdempotencyStore(txManager, idempotencyTTL),
		CORSOrigins:   cfg.Server.CORSOrigins,
		Development:   cfg.IsDevelopment(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	// Drain queued audit entries after the last request finished.
	if err := auditWriter.Close(shutdownCtx); err != nil {
		log.Warnw("audit writer did not drain", "error", err, "stats", auditWriter.Stats())
	}

	log.Info("server stopped")
}
