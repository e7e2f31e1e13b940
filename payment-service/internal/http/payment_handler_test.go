package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/service"
	"github.com/sanketp1/ecommerce-microservices/pkg/auth"
	"github.com/sanketp1/ecommerce-microservices/pkg/httpx"
	"github.com/sanketp1/ecommerce-microservices/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "handler-test-secret"

type serviceMock struct {
	m sync.Mutex

	createRes *service.CreateOrderResult
	orderID   string
	orders    []domain.OrderView
	order     *domain.OrderView
	err       error

	gotUserID   string
	gotToken    string
	gotIdemKey  string
	gotVerify   service.VerifyRequest
	gotOrderID  string
	verifyCalls int
}

func (s *serviceMock) CreatePaymentOrder(_ context.Context, userID, token, key string) (*service.CreateOrderResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.gotUserID, s.gotToken, s.gotIdemKey = userID, token, key
	if s.err != nil {
		return nil, s.err
	}
	return s.createRes, nil
}

func (s *serviceMock) VerifyPayment(_ context.Context, userID string, req service.VerifyRequest) (string, error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.verifyCalls++
	s.gotUserID, s.gotVerify = userID, req
	if s.err != nil {
		return "", s.err
	}
	return s.orderID, nil
}

func (s *serviceMock) ListOrders(_ context.Context, userID string) ([]domain.OrderView, error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.gotUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return s.orders, nil
}

func (s *serviceMock) GetOrder(_ context.Context, userID, orderID string) (*domain.OrderView, error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.gotUserID, s.gotOrderID = userID, orderID
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func newTestRouter(svc PaymentService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	h := NewPaymentHandler(svc, 5*time.Second, logger)
	return NewRouter(h, auth.NewVerifier(jwtSecret), metrics.NewServerMetrics(reg, "payment"), reg, logger)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body []byte, headers map[string]string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	token, err := auth.IssueToken(jwtSecret, "user-1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorResponse {
	t.Helper()
	var body httpx.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCreateOrder_Success(t *testing.T) {
	svc := &serviceMock{createRes: &service.CreateOrderResult{OrderID: "order_A", Amount: 2000, Currency: "INR", KeyID: "rzp_key"}}
	rec, token := doRequest(t, newTestRouter(svc), http.MethodPost, "/payments/create-order", nil,
		map[string]string{IdempotencyKeyHeader: "k1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "order_A", body["order_id"])
	assert.Equal(t, 2000.0, body["amount"])
	assert.Equal(t, "INR", body["currency"])
	assert.Equal(t, "rzp_key", body["key_id"])

	assert.Equal(t, "user-1", svc.gotUserID)
	assert.Equal(t, token, svc.gotToken)
	assert.Equal(t, "k1", svc.gotIdemKey)
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty cart", service.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
		{"upstream", errors.Join(service.ErrUpstreamUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable, "upstream_unavailable"},
		{"storage", errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doRequest(t, newTestRouter(&serviceMock{err: tt.err}), http.MethodPost, "/payments/create-order", nil, nil)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Error, "mongo")
		})
	}
}

func TestVerify_Success(t *testing.T) {
	svc := &serviceMock{orderID: "o1"}
	rec, _ := doRequest(t, newTestRouter(svc), http.MethodPost, "/payments/verify",
		[]byte(`{"external_order_id":"order_A","external_payment_id":"pay_1","signature":"abc"}`), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body VerifyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Payment verified successfully", body.Message)
	assert.Equal(t, "o1", body.OrderID)
	assert.Equal(t, service.VerifyRequest{ExternalOrderID: "order_A", ExternalPaymentID: "pay_1", Signature: "abc"}, svc.gotVerify)
}

func TestVerify_RazorpayFieldNames(t *testing.T) {
	svc := &serviceMock{orderID: "o1"}
	rec, _ := doRequest(t, newTestRouter(svc), http.MethodPost, "/payments/verify",
		[]byte(`{"razorpay_order_id":"order_A","razorpay_payment_id":"pay_1","razorpay_signature":"abc"}`), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.VerifyRequest{ExternalOrderID: "order_A", ExternalPaymentID: "pay_1", Signature: "abc"}, svc.gotVerify)
}

func TestVerify_InvalidBody(t *testing.T) {
	svc := &serviceMock{}
	rec, _ := doRequest(t, newTestRouter(svc), http.MethodPost, "/payments/verify", []byte(`{`), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.verifyCalls)
}

func TestVerify_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing fields", service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{"bad signature", service.ErrSignatureInvalid, http.StatusBadRequest, "signature_invalid"},
		{"unknown intent", service.ErrIntentNotFound, http.StatusBadRequest, "intent_not_found"},
		{"replay", service.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doRequest(t, newTestRouter(&serviceMock{err: tt.err}), http.MethodPost, "/payments/verify",
				[]byte(`{"external_order_id":"a","external_payment_id":"b","signature":"c"}`), nil)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestVerify_Unauthenticated(t *testing.T) {
	svc := &serviceMock{}
	req := httptest.NewRequest(http.MethodPost, "/payments/verify", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.verifyCalls)
}

func TestListOrders(t *testing.T) {
	svc := &serviceMock{orders: []domain.OrderView{{ID: "o2", Total: 20}, {ID: "o1", Total: 5}}}
	rec, _ := doRequest(t, newTestRouter(svc), http.MethodGet, "/orders", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body []domain.OrderView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, "o2", body[0].ID)
	assert.Equal(t, "user-1", svc.gotUserID)
}

func TestGetOrder(t *testing.T) {
	svc := &serviceMock{order: &domain.OrderView{ID: "o1", Total: 20}}
	rec, _ := doRequest(t, newTestRouter(svc), http.MethodGet, "/orders/o1", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o1", svc.gotOrderID)
}

func TestGetOrder_ErrorMapping(t *testing.T) {
	rec, _ := doRequest(t, newTestRouter(&serviceMock{err: service.ErrOrderNotFound}), http.MethodGet, "/orders/o1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doRequest(t, newTestRouter(&serviceMock{err: service.ErrForbidden}), http.MethodGet, "/orders/o1", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthIsPublic(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newTestRouter(&serviceMock{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
