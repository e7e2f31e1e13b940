package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	c "github.com/sanketp1/ecommerce-microservices/cart-service/internal/cache"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/catalog"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/config"
	carthttp "github.com/sanketp1/ecommerce-microservices/cart-service/internal/http"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/poller"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/repository"
	s "github.com/sanketp1/ecommerce-microservices/cart-service/internal/service"
	"github.com/sanketp1/ecommerce-microservices/pkg/auth"
	"github.com/sanketp1/ecommerce-microservices/pkg/logger"
	"github.com/sanketp1/ecommerce-microservices/pkg/metrics"
	"github.com/sanketp1/ecommerce-microservices/pkg/mongox"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.Setup("cart-service", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoDB, err := mongox.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongox.Disconnect(mongoDB, 5*time.Second); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}()

	repo := repository.NewMongoRepository(mongoDB, cfg.CartCollection)
	if err := repository.EnsureIndexes(ctx, repo); err != nil {
		log.Error("failed to create cart indexes", "error", err)
		os.Exit(1)
	}
	log.Info("connected to MongoDB", "database", cfg.MongoDBName)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	log.Info("redis ping succeeded", "addr", cfg.RedisAddr)

	catalogClient := catalog.NewClient(cfg.ProductServiceURL, cfg.CatalogTimeout, log)
	service := s.NewCartService(repo, c.NewRedisCache(redisClient), catalogClient, log)

	if len(cfg.KafkaBrokers) > 0 {
		p := poller.NewPoller(service, log, cfg.KafkaBrokers...)
		defer p.Close()
		go p.Run(ctx)
		log.Info("order event poller started", "brokers", cfg.KafkaBrokers)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "cart")

	handler := carthttp.NewCartHandler(service, cfg.RequestTimeout, log)
	router := carthttp.NewRouter(handler, auth.NewVerifier(cfg.JWTSecret), serverMetrics, reg, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(router, "cart-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("cart service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down cart service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("cart service stopped")
}
