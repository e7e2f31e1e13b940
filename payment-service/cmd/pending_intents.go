package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/config"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/repository"
	s "github.com/sanketp1/ecommerce-microservices/payment-service/internal/service"
	"github.com/sanketp1/ecommerce-microservices/pkg/logger"
	"github.com/sanketp1/ecommerce-microservices/pkg/money"
	"github.com/sanketp1/ecommerce-microservices/pkg/mongox"
	"github.com/spf13/cobra"
)

func pendingIntentsCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "pending-intents",
		Short: "List payment intents that were never verified",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPendingIntents(cmd.Context(), cmd.OutOrStdout(), config.Load(), olderThan)
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "only list intents created before now minus this age")

	return cmd
}

func runPendingIntents(ctx context.Context, out io.Writer, cfg *config.Config, olderThan time.Duration) error {
	if err := cfg.ValidateStore(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.Setup("payment-service", cfg.LogLevel)

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
	service := s.NewPaymentService(repo, nil, nil, nil, cfg.Currency, s.NewMetrics(prometheus.NewRegistry()), log)

	intents, err := service.PendingIntents(ctx, olderThan)
	if err != nil {
		return err
	}
	return writeIntents(out, intents)
}

func writeIntents(out io.Writer, intents []*domain.PaymentIntent) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER ID\tUSER\tAMOUNT\tCURRENCY\tITEMS\tCREATED")
	for _, it := range intents {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%d\t%s\n",
			it.ExternalOrderID, it.UserID, money.FromMinor(it.Amount), it.Currency, len(it.Items),
			it.CreatedAt.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d pending intent(s)\n", len(intents))
	return err
}
