package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
)

var (
	ErrIntentNotFound   = errors.New("payment intent not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyCompleted = errors.New("payment intent already completed")
	ErrDuplicateIntent  = errors.New("payment intent already exists")
)

// OutboxEvent is a message waiting to be published to Kafka. It is written
// in the same transaction as the state change it announces.
type OutboxEvent struct {
	ID          string     `bson:"_id"`
	AggregateID string     `bson:"aggregate_id"`
	Key         string     `bson:"key"`
	EventType   string     `bson:"event_type"`
	Topic       string     `bson:"topic"`
	Payload     []byte     `bson:"payload"`
	CreatedAt   time.Time  `bson:"created_at"`
	PublishedAt *time.Time `bson:"published_at,omitempty"`
}

type PaymentRepository interface {
	CreateIntent(ctx context.Context, intent *domain.PaymentIntent) error
	GetIntentByExternalOrderID(ctx context.Context, externalOrderID string) (*domain.PaymentIntent, error)
	GetIntentByIdempotencyKey(ctx context.Context, userID, key string) (*domain.PaymentIntent, error)
	ListIntents(ctx context.Context, status domain.IntentStatus, createdBefore time.Time, limit int) ([]*domain.PaymentIntent, error)

	// CommitOrder inserts the order, moves its intent from created to
	// completed, clears the user's cart and queues the outbox event, as one
	// unit when the store supports transactions. Returns ErrAlreadyCompleted
	// when the intent was committed before.
	CommitOrder(ctx context.Context, order *domain.Order, event *OutboxEvent) error

	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	GetUnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id string) error
}
