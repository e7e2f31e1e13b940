package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/service"
	"github.com/sanketp1/ecommerce-microservices/pkg/auth"
	"github.com/sanketp1/ecommerce-microservices/pkg/httpx"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.CartView, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.CartView, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error)
	ClearCart(ctx context.Context, userID string) (*domain.CartView, error)
}

type CartHandler struct {
	service CartService
	timeout time.Duration
	logger  *slog.Logger
}

func NewCartHandler(svc CartService, timeout time.Duration, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		timeout: timeout,
		logger:  logger,
	}
}

type AddItemRequestDTO struct {
	ProductID domain.ProductID `json:"product_id"`
	Quantity  int              `json:"quantity"`
}

type MutationResponse struct {
	Message string           `json:"message"`
	Cart    *domain.CartView `json:"cart"`
}

func (h *CartHandler) Routes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/add", h.AddItem)
		r.Delete("/remove/{product_id}", h.RemoveItem)
		r.Put("/update/{product_id}/{quantity}", h.UpdateQuantity)
		r.Delete("/clear", h.ClearCart)
	})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.service.GetCart(ctx, auth.UserID(ctx))
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := h.service.AddItem(ctx, auth.UserID(ctx), string(req.ProductID), req.Quantity)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, MutationResponse{Message: "Item added to cart", Cart: view})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.service.RemoveItem(ctx, auth.UserID(ctx), chi.URLParam(r, "product_id"))
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, MutationResponse{Message: "Item removed from cart", Cart: view})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	quantity, err := strconv.Atoi(chi.URLParam(r, "quantity"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer")
		return
	}
	if quantity < 0 {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_quantity", "Quantity must be non-negative")
		return
	}

	view, err := h.service.UpdateQuantity(ctx, auth.UserID(ctx), chi.URLParam(r, "product_id"), quantity)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	msg := "Item quantity updated"
	if quantity == 0 {
		msg = "Item removed from cart"
	}
	httpx.RespondJSON(w, http.StatusOK, MutationResponse{Message: msg, Cart: view})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.service.ClearCart(ctx, auth.UserID(ctx))
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, MutationResponse{Message: "Cart cleared", Cart: view})
}

func (h *CartHandler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		httpx.RespondError(w, http.StatusNotFound, "product_not_found", "Product not found")
	case errors.Is(err, service.ErrItemNotFound):
		httpx.RespondError(w, http.StatusNotFound, "item_not_found", "Item not found in cart")
	case errors.Is(err, service.ErrCartNotFound):
		httpx.RespondError(w, http.StatusNotFound, "cart_not_found", "Cart not found")
	case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidProduct):
		httpx.RespondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		httpx.RespondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		h.logger.ErrorContext(ctx, "cart request failed", "user_id", auth.UserID(ctx), "error", err)
		httpx.RespondInternal(w)
	}
}
