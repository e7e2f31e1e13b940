// Package circuitbreaker wraps sony/gobreaker with the settings shared by
// every outbound client.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Config struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{MaxFailures: 5, OpenTimeout: 30 * time.Second}
}

func New[T any](name string, cfg Config) *gobreaker.CircuitBreaker[T] {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultConfig().MaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultConfig().OpenTimeout
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:         name,
		MaxRequests:  1,
		Timeout:      cfg.OpenTimeout,
		IsSuccessful: isSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

type clientError struct {
	err error
}

func (e *clientError) Error() string { return e.err.Error() }
func (e *clientError) Unwrap() error { return e.err }

// ClientError marks err as caused by the request itself, such as a 4xx
// answer. It is still returned to the caller but does not count toward
// opening the breaker.
func ClientError(err error) error {
	if err == nil {
		return nil
	}
	return &clientError{err: err}
}

// isSuccessful treats client errors and caller cancellation as healthy
// upstream responses.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var ce *clientError
	return errors.As(err, &ce) || errors.Is(err, context.Canceled)
}

// IsOpen reports whether err was returned because the breaker rejected the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
