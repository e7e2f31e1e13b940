package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/repository"
	"github.com/sanketp1/ecommerce-microservices/pkg/events"
)

type VerifyRequest struct {
	ExternalOrderID   string
	ExternalPaymentID string
	Signature         string
}

// VerifyPayment checks the processor signature and commits the order for
// the matching intent. It returns the new order id.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID string, req VerifyRequest) (string, error) {
	if req.ExternalOrderID == "" || req.ExternalPaymentID == "" || req.Signature == "" {
		return "", ErrInvalidInput
	}

	if !s.processor.VerifySignature(req.ExternalOrderID, req.ExternalPaymentID, req.Signature) {
		s.metrics.Verifications.WithLabelValues(outcomeSignatureInvalid).Inc()
		s.logger.WarnContext(ctx, "payment signature mismatch",
			"event", "payment.signature_invalid",
			"user_id", userID,
			"order_id", req.ExternalOrderID,
			"payment_id", req.ExternalPaymentID)
		return "", ErrSignatureInvalid
	}

	intent, err := s.repo.GetIntentByExternalOrderID(ctx, req.ExternalOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrIntentNotFound) {
			s.metrics.Verifications.WithLabelValues(outcomeIntentNotFound).Inc()
			return "", ErrIntentNotFound
		}
		s.metrics.Verifications.WithLabelValues(outcomeError).Inc()
		return "", err
	}
	if intent.UserID != userID {
		s.metrics.Verifications.WithLabelValues(outcomeIntentNotFound).Inc()
		s.logger.WarnContext(ctx, "intent owned by another user", "user_id", userID, "order_id", req.ExternalOrderID)
		return "", ErrIntentNotFound
	}
	if !domain.CanTransition(intent.Status, domain.IntentStatusCompleted) {
		s.metrics.Verifications.WithLabelValues(outcomeAlreadyProcessed).Inc()
		return "", ErrAlreadyProcessed
	}

	order, err := s.commit(ctx, intent, req.ExternalPaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			s.metrics.Verifications.WithLabelValues(outcomeAlreadyProcessed).Inc()
			return "", ErrAlreadyProcessed
		}
		s.metrics.Verifications.WithLabelValues(outcomeError).Inc()
		s.logger.ErrorContext(ctx, "order commit failed",
			"user_id", userID, "order_id", req.ExternalOrderID, "error", err)
		return "", err
	}

	s.dropCachedCart(ctx, userID)

	s.metrics.Verifications.WithLabelValues(outcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "payment verified",
		"user_id", userID, "order_id", order.ID, "external_order_id", order.ExternalOrderID, "total_minor", order.TotalMinor)

	return order.ID, nil
}

// commit builds the order from the intent snapshot and hands it to the
// repository together with its order.confirmed outbox event.
func (s *PaymentService) commit(ctx context.Context, intent *domain.PaymentIntent, paymentID string) (*domain.Order, error) {
	now := s.now()
	order := domain.NewOrder(s.newID(), intent, paymentID, now)

	evt := events.OrderConfirmed{
		EventID:         s.newID(),
		OrderID:         order.ID,
		UserID:          order.UserID,
		ExternalOrderID: order.ExternalOrderID,
		PaymentID:       paymentID,
		TotalMinor:      order.TotalMinor,
		Currency:        order.Currency,
		ConfirmedAt:     now,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	outbox := &repository.OutboxEvent{
		ID:          evt.EventID,
		AggregateID: order.ID,
		Key:         order.UserID,
		EventType:   events.TypeOrderConfirmed,
		Topic:       events.TopicOrderConfirmed,
		Payload:     payload,
		CreatedAt:   now,
	}

	if err := s.repo.CommitOrder(ctx, order, outbox); err != nil {
		return nil, err
	}
	return order, nil
}

// dropCachedCart removes the cart copy the cart service keeps in Redis.
// The commit is already durable, so a failure is only logged; the
// order.confirmed consumer deletes the same key again.
func (s *PaymentService) dropCachedCart(ctx context.Context, userID string) {
	if s.cartCache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cartCache.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached cart",
			"user_id", userID, "error", err)
	}
}
