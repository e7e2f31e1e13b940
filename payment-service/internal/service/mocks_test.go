package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/processor"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/repository"
)

type mockRepository struct {
	m            sync.RWMutex
	intents      map[string]*domain.PaymentIntent // by external order id
	orders       map[string]*domain.Order
	outbox       []*repository.OutboxEvent
	clearedCarts []string
	createErr    error
	commitErr    error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		intents: map[string]*domain.PaymentIntent{},
		orders:  map[string]*domain.Order{},
	}
}

func (m *mockRepository) CreateIntent(_ context.Context, intent *domain.PaymentIntent) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.intents[intent.ExternalOrderID]; ok {
		return repository.ErrDuplicateIntent
	}
	c := *intent
	c.Items = append([]domain.SnapshotItem(nil), intent.Items...)
	m.intents[intent.ExternalOrderID] = &c
	return nil
}

func (m *mockRepository) GetIntentByExternalOrderID(_ context.Context, externalOrderID string) (*domain.PaymentIntent, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	intent, ok := m.intents[externalOrderID]
	if !ok {
		return nil, repository.ErrIntentNotFound
	}
	c := *intent
	return &c, nil
}

func (m *mockRepository) GetIntentByIdempotencyKey(_ context.Context, userID, key string) (*domain.PaymentIntent, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	for _, intent := range m.intents {
		if intent.UserID == userID && intent.IdempotencyKey == key {
			c := *intent
			return &c, nil
		}
	}
	return nil, repository.ErrIntentNotFound
}

func (m *mockRepository) ListIntents(_ context.Context, status domain.IntentStatus, createdBefore time.Time, limit int) ([]*domain.PaymentIntent, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	var out []*domain.PaymentIntent
	for _, intent := range m.intents {
		if intent.Status == status && intent.CreatedAt.Before(createdBefore) {
			c := *intent
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRepository) CommitOrder(_ context.Context, order *domain.Order, event *repository.OutboxEvent) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	for _, o := range m.orders {
		if o.ExternalOrderID == order.ExternalOrderID {
			return repository.ErrAlreadyCompleted
		}
	}
	intent, ok := m.intents[order.ExternalOrderID]
	if !ok || intent.Status != domain.IntentStatusCreated {
		return repository.ErrAlreadyCompleted
	}

	intent.Status = domain.IntentStatusCompleted
	intent.ExternalPaymentID = order.PaymentID
	m.orders[order.ID] = order
	m.clearedCarts = append(m.clearedCarts, order.UserID)
	if event != nil {
		m.outbox = append(m.outbox, event)
	}
	return nil
}

func (m *mockRepository) ListOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	out := []*domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRepository) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockRepository) GetUnpublishedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	return nil, nil
}

func (m *mockRepository) MarkEventPublished(context.Context, string) error {
	return nil
}

func (m *mockRepository) orderCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return len(m.orders)
}

type mockCartReader struct {
	m    sync.RWMutex
	cart *domain.PricedCart
	err  error
}

func (c *mockCartReader) GetCart(context.Context, string) (*domain.PricedCart, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	if c.cart == nil {
		return &domain.PricedCart{}, nil
	}
	return c.cart, nil
}

type mockCartCache struct {
	m           sync.RWMutex
	invalidated []string
	err         error
}

func (c *mockCartCache) Invalidate(_ context.Context, userID string) error {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return c.err
	}
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func (c *mockCartCache) users() []string {
	c.m.RLock()
	defer c.m.RUnlock()
	return append([]string(nil), c.invalidated...)
}

const testSecret = "test_secret"

type mockProcessor struct {
	m      sync.RWMutex
	calls  int
	nextID int
	err    error
}

func (p *mockProcessor) KeyID() string { return "rzp_test_key" }

func (p *mockProcessor) CreateOrder(_ context.Context, amount int64, _, _ string) (string, error) {
	p.m.Lock()
	defer p.m.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if amount <= 0 {
		return "", errors.New("amount must be positive")
	}
	p.nextID++
	return "order_" + string(rune('A'+p.nextID-1)), nil
}

func (p *mockProcessor) VerifySignature(orderID, paymentID, signature string) bool {
	return processor.VerifySignature(testSecret, orderID, paymentID, signature)
}

func (p *mockProcessor) callCount() int {
	p.m.RLock()
	defer p.m.RUnlock()
	return p.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
