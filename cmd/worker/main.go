// Package main is the entry point for the colisflow background worker: the
// minimum-balance alert scan and idempotency key cleanup.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"colisflow/internal/config"
	"colisflow/internal/domain/cash"
	"colisflow/internal/infrastructure/storage/postgres"
	"colisflow/internal/infrastructure/storage/postgres/cash_repo"
	"colisflow/pkg/logger"
	"colisflow/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		Service:     "colisflow-worker",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting colisflow worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = 4
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	numbers := numerator.NewWithQuerier(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})
	cashService := cash.NewService(cash_repo.NewRepo(txManager), txManager, numbers, nil,
		cash.WithOpeningPolicy(cash.OpeningPolicy(cfg.Cash.OpeningPolicy)))

	worker := NewWorker(cashService, postgres.NewIdempotencyStore(txManager, 0), log, Intervals{
		Alert:   cfg.Cash.AlertInterval,
		Cleanup: time.Hour,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.Server.WorkerMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics listener failed", "addr", cfg.Server.WorkerMetricsAddr, "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = metricsServer.Shutdown(shutdownCtx)

	log.Info("worker stopped")
}
