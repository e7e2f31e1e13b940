package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sanketp1/ecommerce-microservices/pkg/auth"
	"github.com/sanketp1/ecommerce-microservices/pkg/httpx"
	"github.com/sanketp1/ecommerce-microservices/pkg/metrics"
)

func NewRouter(h *CartHandler, verifier *auth.Verifier, m *metrics.ServerMetrics, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(httpx.RequestIDHeader)
	r.Use(middleware.RealIP)
	r.Use(httpx.AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "cart-service"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	r.Group(func(r chi.Router) {
		r.Use(verifier.Middleware)
		h.Routes(r)
	})

	return r
}
