package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collections struct {
	Payments string
	Orders   string
	Carts    string
	Outbox   string
}

func DefaultCollections() Collections {
	return Collections{Payments: "payments", Orders: "orders", Carts: "cart", Outbox: "outbox"}
}

type mongoRepository struct {
	client       *mongo.Client
	payments     *mongo.Collection
	orders       *mongo.Collection
	carts        *mongo.Collection
	outbox       *mongo.Collection
	transactions bool
}

// NewMongoRepository returns a repository over db. With transactions
// disabled (standalone mongod) CommitOrder runs its steps in order without
// a transaction.
func NewMongoRepository(db *mongo.Database, cols Collections, transactions bool) PaymentRepository {
	return &mongoRepository{
		client:       db.Client(),
		payments:     db.Collection(cols.Payments),
		orders:       db.Collection(cols.Orders),
		carts:        db.Collection(cols.Carts),
		outbox:       db.Collection(cols.Outbox),
		transactions: transactions,
	}
}

func (m *mongoRepository) CreateIntent(ctx context.Context, intent *domain.PaymentIntent) error {
	_, err := m.payments.InsertOne(ctx, intent)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateIntent
		}
		return fmt.Errorf("failed to create payment intent: %w", err)
	}
	return nil
}

func (m *mongoRepository) GetIntentByExternalOrderID(ctx context.Context, externalOrderID string) (*domain.PaymentIntent, error) {
	return m.findIntent(ctx, bson.M{"external_order_id": externalOrderID})
}

func (m *mongoRepository) GetIntentByIdempotencyKey(ctx context.Context, userID, key string) (*domain.PaymentIntent, error) {
	return m.findIntent(ctx, bson.M{"user_id": userID, "idempotency_key": key})
}

func (m *mongoRepository) findIntent(ctx context.Context, filter bson.M) (*domain.PaymentIntent, error) {
	var intent domain.PaymentIntent
	err := m.payments.FindOne(ctx, filter).Decode(&intent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return &intent, nil
}

func (m *mongoRepository) ListIntents(ctx context.Context, status domain.IntentStatus, createdBefore time.Time, limit int) ([]*domain.PaymentIntent, error) {
	filter := bson.M{
		"status":     status,
		"created_at": bson.M{"$lt": createdBefore},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(int64(limit))

	cur, err := m.payments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment intents: %w", err)
	}
	var intents []*domain.PaymentIntent
	if err := cur.All(ctx, &intents); err != nil {
		return nil, fmt.Errorf("failed to decode payment intents: %w", err)
	}
	return intents, nil
}

func (m *mongoRepository) CommitOrder(ctx context.Context, order *domain.Order, event *OutboxEvent) error {
	if !m.transactions {
		return m.commitSteps(ctx, order, event)
	}

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, m.commitSteps(sc, order, event)
	})
	return err
}

// commitSteps creates the order before touching the cart, so a crash
// between steps can leave an uncleared cart but never a cleared cart
// without its order.
func (m *mongoRepository) commitSteps(ctx context.Context, order *domain.Order, event *OutboxEvent) error {
	if _, err := m.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyCompleted
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	now := order.CreatedAt
	res, err := m.payments.UpdateOne(ctx,
		bson.M{
			"external_order_id": order.ExternalOrderID,
			"status":            domain.IntentStatusCreated,
		},
		bson.M{"$set": bson.M{
			"status":              domain.IntentStatusCompleted,
			"external_payment_id": order.PaymentID,
			"updated_at":          now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to complete payment intent: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyCompleted
	}

	_, err = m.carts.UpdateOne(ctx,
		bson.M{"user_id": order.UserID},
		bson.M{"$set": bson.M{
			"items":       bson.A{},
			"total_minor": int64(0),
			"updated_at":  now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if event != nil {
		if _, err := m.outbox.InsertOne(ctx, event); err != nil {
			return fmt.Errorf("failed to insert outbox event: %w", err)
		}
	}
	return nil
}

func (m *mongoRepository) ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.orders.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	orders := []*domain.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (m *mongoRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := m.orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *mongoRepository) GetUnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(int64(limit))
	cur, err := m.outbox.Find(ctx, bson.M{"published_at": bson.M{"$exists": false}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox events: %w", err)
	}
	var events []*OutboxEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode outbox events: %w", err)
	}
	return events, nil
}

func (m *mongoRepository) MarkEventPublished(ctx context.Context, id string) error {
	res, err := m.outbox.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"published_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark event published: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("outbox event %s not found", id)
	}
	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.payments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "external_order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}

	_, err = m.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "external_order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	_, err = m.outbox.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "published_at", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}

	return nil
}

// EnsureIndexes creates indexes when repo is the Mongo implementation.
func EnsureIndexes(ctx context.Context, repo PaymentRepository) error {
	if m, ok := repo.(*mongoRepository); ok {
		return m.CreateIndexes(ctx)
	}
	return nil
}
