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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/cartclient"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/config"
	paymenthttp "github.com/sanketp1/ecommerce-microservices/payment-service/internal/http"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/processor"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/publisher"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/repository"
	s "github.com/sanketp1/ecommerce-microservices/payment-service/internal/service"
	"github.com/sanketp1/ecommerce-microservices/pkg/auth"
	"github.com/sanketp1/ecommerce-microservices/pkg/cartcache"
	"github.com/sanketp1/ecommerce-microservices/pkg/logger"
	"github.com/sanketp1/ecommerce-microservices/pkg/metrics"
	"github.com/sanketp1/ecommerce-microservices/pkg/mongox"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the payment HTTP API and outbox publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func collections(cfg *config.Config) repository.Collections {
	return repository.Collections{
		Payments: cfg.PaymentsCollection,
		Orders:   cfg.OrdersCollection,
		Carts:    cfg.CartCollection,
		Outbox:   cfg.OutboxCollection,
	}
}

func runServe(parent context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.Setup("payment-service", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoDB, err := mongox.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		if err := mongox.Disconnect(mongoDB, 5*time.Second); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}()

	repo := repository.NewMongoRepository(mongoDB, collections(cfg), cfg.MongoTransactions)
	if err := repository.EnsureIndexes(ctx, repo); err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}
	log.Info("connected to MongoDB", "database", cfg.MongoDBName, "transactions", cfg.MongoTransactions)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("redis ping succeeded", "addr", cfg.RedisAddr)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "payment")

	service := s.NewPaymentService(
		repo,
		cartclient.NewClient(cfg.CartServiceURL, cfg.CartTimeout),
		processor.NewClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.ProcessorTimeout),
		cartcache.NewInvalidator(redisClient),
		cfg.Currency,
		s.NewMetrics(reg),
		log,
	)

	if len(cfg.KafkaBrokers) > 0 {
		p := publisher.NewOutboxPoller(repo, log, cfg.KafkaBrokers...)
		defer p.Close()
		go p.Run(ctx)
		log.Info("outbox publisher started", "brokers", cfg.KafkaBrokers)
	} else {
		log.Warn("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	handler := paymenthttp.NewPaymentHandler(service, cfg.RequestTimeout, log)
	router := paymenthttp.NewRouter(handler, auth.NewVerifier(cfg.JWTSecret), serverMetrics, reg, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(router, "payment-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("payment service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down payment service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("payment service stopped")
	return nil
}
