package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sanketp1/ecommerce-microservices/pkg/metrics"
)

const (
	outcomeSuccess          = "success"
	outcomeSignatureInvalid = "signature_invalid"
	outcomeIntentNotFound   = "intent_not_found"
	outcomeAlreadyProcessed = "already_processed"
	outcomeError            = "error"
)

type Metrics struct {
	IntentsCreated prometheus.Counter
	Verifications  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "payment_intents_created_total",
		Help:      "Payment intents registered with the processor.",
	})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "payment_verifications_total",
		Help:      "Payment verification attempts by outcome.",
	}, []string{"outcome"})

	reg.MustRegister(created, verifications)
	return &Metrics{IntentsCreated: created, Verifications: verifications}
}
