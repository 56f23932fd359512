package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	c "github.com/fjod/go_cart/shop-service/internal/cache"
	"github.com/fjod/go_cart/shop-service/internal/config"
	h "github.com/fjod/go_cart/shop-service/internal/http"
	"github.com/fjod/go_cart/shop-service/internal/logger"
	"github.com/fjod/go_cart/shop-service/internal/metrics"
	"github.com/fjod/go_cart/shop-service/internal/publisher"
	"github.com/fjod/go_cart/shop-service/internal/repository"
	s "github.com/fjod/go_cart/shop-service/internal/service"
	"github.com/fjod/go_cart/shop-service/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "shop-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.New(serviceName, os.Stdout, logger.ParseLevel(cfg.LogLevel))
	appLog.Info("shop-service starting")
	// continue traces started by the gateway
	otel.SetTextMapPropagator(propagation.TraceContext{})
	var wg sync.WaitGroup

	// Database setup
	repo, err := repository.NewRepository(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(&cfg.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	appLog.Info("database migrations completed")

	// Cart cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	pingCancel()

	registry := prometheus.NewRegistry()
	serverMetrics := metrics.NewServerMetrics(registry, "shop")

	validator, err := validation.NewCheckoutValidator()
	if err != nil {
		log.Fatalf("Failed to build checkout validator: %v", err)
	}

	cartService := s.NewCartService(repo, c.NewRedisCache(redisClient), appLog)
	checkoutService := s.NewCheckoutService(repo, validator, cartService, serverMetrics, appLog)

	// Outbox poller
	writer := publisher.NewKafkaWriter(cfg.OutboxTopic, cfg.KafkaBrokers...)
	poller := publisher.NewOutboxPoller(repo, writer, appLog)
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(pollerCtx)
	}()

	router := h.NewRouter(h.RouterConfig{
		ServiceName:        serviceName,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, h.Handlers{
		Products:   h.NewProductHandler(repo, cfg.RequestTimeout),
		Cart:       h.NewCartHandler(cartService, cfg.RequestTimeout),
		Checkout:   h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		Orders:     h.NewOrdersHandler(repo, cfg.RequestTimeout),
		Metrics:    metrics.Handler(registry),
		Instrument: serverMetrics.Middleware,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Info("http server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down shop-service")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("server forced to shutdown", "error", err)
	}
	pollerCancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		appLog.Info("outbox poller stopped cleanly")
	case <-ctx.Done():
		appLog.Warn("timed out waiting for outbox poller")
	}

	appLog.Info("shop-service stopped")
}
