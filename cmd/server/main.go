package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"payguard/internal/cases"
	httpapi "payguard/internal/http"
	"payguard/internal/idempotency"
	"payguard/internal/ledger"
	"payguard/internal/payment"
	"payguard/internal/payment/adapters"
	paymenthandler "payguard/internal/payment/handler"
	"payguard/internal/payment/metrics"
	"payguard/internal/platform/config"
	"payguard/internal/platform/httpserver"
	"payguard/internal/platform/logger"
	platformredis "payguard/internal/platform/redis"
	"payguard/internal/ratelimit"
	"payguard/internal/signals"
)

// main wires dependencies explicitly and keeps the server lifecycle small.
// All shared state (ledger, buckets, idempotency cache) is constructed once
// here and torn down at shutdown; business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	book := ledger.NewSeeded(cfg.SeedBalances)
	limiter := ratelimit.NewLimiter(cfg.RateLimitCapacity, cfg.RateLimitRefillRate)

	var idemStore idempotency.Store = idempotency.NewInMemoryStore()
	var healthChecks []httpapi.HealthChecker
	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		idemStore = idempotency.NewRedisStore(redisClient.Client)
		healthChecks = append(healthChecks, redisClient)
		log.Info("using redis idempotency store")
	}

	service, err := payment.NewService(
		limiter,
		idemStore,
		signals.NewStaticSource(book),
		adapters.NewLedgerReserver(book),
		cases.NewInMemoryStore(),
		log,
		payment.WithMetrics(metrics.New()),
	)
	if err != nil {
		log.Error("failed to construct payment service", "error", err)
		os.Exit(1)
	}

	router := httpapi.NewRouter(paymenthandler.New(service, log), cfg.APIKey, healthChecks...)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting payguard", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("payguard stopped")
}
