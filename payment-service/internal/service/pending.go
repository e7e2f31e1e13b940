package service

import (
	"context"
	"time"

	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
)

const pendingIntentsLimit = 500

// PendingIntents lists intents that were never verified and are older than
// olderThan, oldest first.
func (s *PaymentService) PendingIntents(ctx context.Context, olderThan time.Duration) ([]*domain.PaymentIntent, error) {
	return s.repo.ListIntents(ctx, domain.IntentStatusCreated, s.now().Add(-olderThan), pendingIntentsLimit)
}
