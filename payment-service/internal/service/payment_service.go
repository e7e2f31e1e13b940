package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/repository"
)

// CartReader fetches the priced cart of the bearer token's owner.
type CartReader interface {
	GetCart(ctx context.Context, bearerToken string) (*domain.PricedCart, error)
}

type PaymentProcessor interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// CartCache drops the cached copy of a user's cart once the order commit
// has emptied the stored one.
type CartCache interface {
	Invalidate(ctx context.Context, userID string) error
}

type PaymentService struct {
	repo      repository.PaymentRepository
	carts     CartReader
	processor PaymentProcessor
	cartCache CartCache
	currency  string
	metrics   *Metrics
	logger    *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewPaymentService(
	repo repository.PaymentRepository,
	carts CartReader,
	processor PaymentProcessor,
	cartCache CartCache,
	currency string,
	metrics *Metrics,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		repo:      repo,
		carts:     carts,
		processor: processor,
		cartCache: cartCache,
		currency:  currency,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}
