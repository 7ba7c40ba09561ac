package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	httpAdapter "github.com/iho/amlsynth/internal/adapter/http"
	"github.com/iho/amlsynth/internal/adapter/http/handler"
	"github.com/iho/amlsynth/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/amlsynth/internal/adapter/repository/memory"
	redisRepo "github.com/iho/amlsynth/internal/adapter/repository/redis"
	"github.com/iho/amlsynth/internal/infrastructure/metrics"
	"github.com/iho/amlsynth/internal/infrastructure/redis"
	"github.com/iho/amlsynth/internal/usecase"
)

const limiterIdle = 10 * time.Minute

func newServeCmd(a *app) *cobra.Command {
	cfg := a.cfg

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset browser API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.HTTPPort, "port", cfg.HTTPPort, "HTTP listen port")
	f.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for run storage, empty keeps runs in memory")
	f.DurationVar(&cfg.RunTTL, "run-ttl", cfg.RunTTL, "How long generated runs are kept")
	f.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Run creations per second per client")
	f.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "Run creation burst per client")
	f.StringVar(&cfg.PatternFile, "patterns", cfg.PatternFile, "Default pattern file for runs that omit patterns")

	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	cfg := a.cfg
	log := a.logger

	defaults, err := generateOptions(cfg)
	if err != nil {
		return err
	}

	var (
		store       usecase.RunStore
		idempotency usecase.IdempotencyStore
		checks      = map[string]handler.Pinger{}
	)

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		log.Info().Msg("connected to redis")

		store = redisRepo.NewRunStore(client, cfg.RunTTL)
		idempotency = redisRepo.NewIdempotencyStore(client)
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	} else {
		log.Info().Dur("ttl", cfg.RunTTL).Msg("keeping runs in memory")
		store = memoryRepo.NewRunStore(cfg.RunTTL)
		idempotency = memoryRepo.NewIdempotencyStore()
	}

	recorder := metrics.New(prometheus.DefaultRegisterer)
	datasetUC := usecase.NewDatasetUseCase(newIDGenerator, recorder, log)
	runUC := usecase.NewRunUseCase(datasetUC, store)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	go sweepLimiter(ctx, limiter)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RunHandler:       handler.NewRunHandler(runUC, defaults, log),
		HealthHandler:    handler.NewHealthHandler(checks),
		IdempotencyStore: idempotency,
		RateLimiter:      limiter,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Cleanup(limiterIdle)
		}
	}
}
