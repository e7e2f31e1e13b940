// Package publisher relays committed outbox events to Kafka.
package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/repository"
	"github.com/sanketp1/ecommerce-microservices/pkg/events"
	"github.com/segmentio/kafka-go"
)

const (
	defaultTick      = time.Second
	defaultBatchSize = 100
)

type OutboxStore interface {
	GetUnpublishedEvents(ctx context.Context, limit int) ([]*repository.OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id string) error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OutboxPoller struct {
	tick      time.Duration
	batchSize int
	store     OutboxStore
	writer    MessageWriter
	logger    *slog.Logger
}

// NewOutboxPoller writes to brokers. Each message goes to the topic stored
// on its outbox record.
func NewOutboxPoller(store OutboxStore, logger *slog.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newOutboxPoller(store, w, logger)
}

func newOutboxPoller(store OutboxStore, w MessageWriter, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		tick:      defaultTick,
		batchSize: defaultBatchSize,
		store:     store,
		writer:    w,
		logger:    logger,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

// processUnpublishedEvents stops at the first failed publish so events of
// one user stay in commit order.
func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	pending, err := p.store.GetUnpublishedEvents(ctx, p.batchSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to fetch outbox events", "error", err)
		return
	}

	for _, event := range pending {
		if err := p.publish(ctx, event); err != nil {
			p.logger.ErrorContext(ctx, "failed to publish outbox event", "event_id", event.ID, "error", err)
			return
		}
		if err := p.store.MarkEventPublished(ctx, event.ID); err != nil {
			// the event will be sent again on the next tick
			p.logger.ErrorContext(ctx, "failed to mark outbox event published", "event_id", event.ID, "error", err)
			continue
		}
		p.logger.DebugContext(ctx, "outbox event published", "event_id", event.ID, "topic", event.Topic)
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *repository.OutboxEvent) error {
	topic := event.Topic
	if topic == "" {
		topic = events.TopicOrderConfirmed
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.Key),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: events.HeaderEventType, Value: []byte(event.EventType)},
		},
	})
}
