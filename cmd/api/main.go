package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/routes"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/realtime"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/config"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/dispatch"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/instance"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/metrics"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/migrate"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Instance:    instance.GetID(),
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	dispatchMetrics := metrics.NewDispatchMetrics(registry)

	gate := dispatch.NewGate(dispatch.GateParams{
		Permits:        cfg.Dispatch.GatePermits,
		AcquireTimeout: cfg.Dispatch.AcquireTimeout,
		Logger:         logg,
		Metrics:        dispatchMetrics,
	})
	pool, err := dispatch.NewPool(dispatch.PoolParams{
		Workers:     cfg.Dispatch.Workers,
		QueueSize:   cfg.Dispatch.QueueSize,
		TaskTimeout: cfg.Dispatch.TaskTimeout,
		Gate:        gate,
		Logger:      logg,
		Metrics:     dispatchMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch pool", err)
		os.Exit(1)
	}
	pool.Start()

	origin := instance.GetID()
	sessions := realtime.NewRegistry(logg)
	relay, err := realtime.NewRelay(redisClient, sessions, origin, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create realtime relay", err)
		os.Exit(1)
	}

	services, err := buildServices(cfg, logg, dbClient, redisClient, pool, sessions, origin)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := relay.Run(ctx); err != nil {
			logg.Error(ctx, "realtime relay stopped", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": origin,
	})

	handler := routes.NewRouter(cfg, logg, routes.Infra{
		DB:          dbClient,
		Redis:       redisClient,
		Idempotency: redisClient,
		Gatherer:    registry,
		HTTP:        metrics.NewHTTPMetrics(registry),
	}, services)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "http server shutdown failed", err)
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "dispatch pool did not drain", err)
	}
	logg.Info(shutdownCtx, "api server stopped")
}
