package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/service"
	"github.com/sanketp1/ecommerce-microservices/pkg/auth"
	"github.com/sanketp1/ecommerce-microservices/pkg/httpx"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type PaymentService interface {
	CreatePaymentOrder(ctx context.Context, userID, bearerToken, idempotencyKey string) (*service.CreateOrderResult, error)
	VerifyPayment(ctx context.Context, userID string, req service.VerifyRequest) (string, error)
	ListOrders(ctx context.Context, userID string) ([]domain.OrderView, error)
	GetOrder(ctx context.Context, userID, orderID string) (*domain.OrderView, error)
}

type PaymentHandler struct {
	service PaymentService
	timeout time.Duration
	logger  *slog.Logger
}

func NewPaymentHandler(svc PaymentService, timeout time.Duration, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		timeout: timeout,
		logger:  logger,
	}
}

// VerifyRequestDTO accepts the generic field names and the ones the
// Razorpay checkout widget posts back.
type VerifyRequestDTO struct {
	ExternalOrderID   string `json:"external_order_id"`
	ExternalPaymentID string `json:"external_payment_id"`
	Signature         string `json:"signature"`

	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (d VerifyRequestDTO) toRequest() service.VerifyRequest {
	return service.VerifyRequest{
		ExternalOrderID:   firstNonEmpty(d.ExternalOrderID, d.RazorpayOrderID),
		ExternalPaymentID: firstNonEmpty(d.ExternalPaymentID, d.RazorpayPaymentID),
		Signature:         firstNonEmpty(d.Signature, d.RazorpaySignature),
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

type VerifyResponse struct {
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

func (h *PaymentHandler) Routes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/create-order", h.CreateOrder)
		r.Post("/verify", h.Verify)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{order_id}", h.GetOrder)
	})
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.service.CreatePaymentOrder(ctx, auth.UserID(ctx), auth.Token(ctx), r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, res)
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req VerifyRequestDTO
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	orderID, err := h.service.VerifyPayment(ctx, auth.UserID(ctx), req.toRequest())
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, VerifyResponse{Message: "Payment verified successfully", OrderID: orderID})
}

func (h *PaymentHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.service.ListOrders(ctx, auth.UserID(ctx))
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, orders)
}

func (h *PaymentHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.service.GetOrder(ctx, auth.UserID(ctx), chi.URLParam(r, "order_id"))
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, order)
}

func (h *PaymentHandler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		httpx.RespondError(w, http.StatusBadRequest, "empty_cart", "Cart is empty")
	case errors.Is(err, service.ErrInvalidInput):
		httpx.RespondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrSignatureInvalid):
		httpx.RespondError(w, http.StatusBadRequest, "signature_invalid", "Invalid payment signature")
	case errors.Is(err, service.ErrIntentNotFound):
		httpx.RespondError(w, http.StatusBadRequest, "intent_not_found", "Payment not found")
	case errors.Is(err, service.ErrAlreadyProcessed):
		httpx.RespondError(w, http.StatusConflict, "already_processed", "Payment already processed")
	case errors.Is(err, service.ErrOrderNotFound):
		httpx.RespondError(w, http.StatusNotFound, "order_not_found", "Order not found")
	case errors.Is(err, service.ErrForbidden):
		httpx.RespondError(w, http.StatusForbidden, "forbidden", "Not authorized to view this order")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		h.logger.WarnContext(ctx, "upstream unavailable", "user_id", auth.UserID(ctx), "error", err)
		httpx.RespondError(w, http.StatusServiceUnavailable, "upstream_unavailable", "Payment service temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		httpx.RespondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		h.logger.ErrorContext(ctx, "payment request failed", "user_id", auth.UserID(ctx), "error", err)
		httpx.RespondInternal(w)
	}
}
