package service

import (
	"errors"

	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/repository"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidInput        = errors.New("external_order_id, external_payment_id and signature are required")
	ErrSignatureInvalid    = errors.New("payment signature is invalid")
	ErrIntentNotFound      = repository.ErrIntentNotFound
	ErrAlreadyProcessed    = errors.New("payment already processed")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrOrderNotFound       = repository.ErrOrderNotFound
	ErrForbidden           = errors.New("order belongs to another user")
)
