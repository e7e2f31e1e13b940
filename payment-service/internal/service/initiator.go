package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/repository"
)

type CreateOrderResult struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// CreatePaymentOrder snapshots the caller's cart, registers an order with
// the processor for the snapshot total and records a created intent.
// A non-empty idempotencyKey returns the intent already created under it.
func (s *PaymentService) CreatePaymentOrder(ctx context.Context, userID, bearerToken, idempotencyKey string) (*CreateOrderResult, error) {
	if idempotencyKey != "" {
		existing, err := s.repo.GetIntentByIdempotencyKey(ctx, userID, idempotencyKey)
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "duplicate create-order request",
				"user_id", userID, "idempotency_key", idempotencyKey, "order_id", existing.ExternalOrderID)
			return s.result(existing), nil
		case !errors.Is(err, repository.ErrIntentNotFound):
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
	}

	cart, err := s.carts.GetCart(ctx, bearerToken)
	if err != nil {
		s.logger.ErrorContext(ctx, "cart fetch failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items, amount, err := domain.NewSnapshot(cart)
	if err != nil {
		s.logger.WarnContext(ctx, "cart has unpriced items", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	intentID := s.newID()
	externalOrderID, err := s.processor.CreateOrder(ctx, amount, s.currency, intentID)
	if err != nil {
		s.logger.ErrorContext(ctx, "processor create order failed", "user_id", userID, "amount", amount, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	now := s.now()
	intent := &domain.PaymentIntent{
		ID:              intentID,
		UserID:          userID,
		ExternalOrderID: externalOrderID,
		IdempotencyKey:  idempotencyKey,
		Amount:          amount,
		Currency:        s.currency,
		Status:          domain.IntentStatusCreated,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateIntent(ctx, intent); err != nil {
		if errors.Is(err, repository.ErrDuplicateIntent) && idempotencyKey != "" {
			// lost a race with a concurrent request under the same key
			existing, getErr := s.repo.GetIntentByIdempotencyKey(ctx, userID, idempotencyKey)
			if getErr == nil {
				return s.result(existing), nil
			}
		}
		s.logger.ErrorContext(ctx, "failed to persist payment intent",
			"user_id", userID, "order_id", externalOrderID, "error", err)
		return nil, err
	}

	s.metrics.IntentsCreated.Inc()
	s.logger.InfoContext(ctx, "payment intent created",
		"user_id", userID, "intent_id", intentID, "order_id", externalOrderID, "amount", amount)

	return s.result(intent), nil
}

func (s *PaymentService) result(intent *domain.PaymentIntent) *CreateOrderResult {
	return &CreateOrderResult{
		OrderID:  intent.ExternalOrderID,
		Amount:   intent.Amount,
		Currency: intent.Currency,
		KeyID:    s.processor.KeyID(),
	}
}
