package client

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for retry operations.
var (
	apixRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apix_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	apixRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apix_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// Retry defaults, matching the vendor's documented guidance.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 5 * time.Second
)

// Executor retries a single request attempt with a fixed delay between
// attempts. The delay is deliberately not exponential: the external service
// throttles on request rate, not on burst shape, and a fixed interval keeps
// the pacing predictable.
type Executor struct {
	// MaxAttempts is the total attempt budget, including the first call.
	MaxAttempts int

	// Delay is the fixed wait between attempts.
	Delay time.Duration
}

// NewExecutor creates a retry executor. Non-positive arguments fall back to
// the defaults.
func NewExecutor(maxAttempts int, delay time.Duration) *Executor {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &Executor{MaxAttempts: maxAttempts, Delay: delay}
}

// Execute runs op up to MaxAttempts times. Only failures classified as
// transient are retried; everything else propagates on the first attempt.
// When the budget is exhausted the last error is surfaced, wrapped in
// ErrRetryExhausted.
func (e *Executor) Execute(ctx context.Context, op func() error, classify func(error) ErrorClass) error {
	var lastErr error
	var class ErrorClass

	for attempt := 1; attempt <= e.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			if attempt > 1 {
				log.Info().
					Str("error_class", string(class)).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		class = classify(err)

		if !shouldRetry(class) {
			return lastErr
		}

		if attempt >= e.MaxAttempts {
			break
		}

		apixRetriesTotal.WithLabelValues(string(class)).Inc()
		log.Warn().
			Err(err).
			Str("error_class", string(class)).
			Int("attempt", attempt).
			Dur("delay", e.Delay).
			Msg("Retrying request after delay")

		select {
		case <-ctx.Done():
			log.Warn().
				Str("error_class", string(class)).
				Int("attempt", attempt).
				Msg("Context cancelled during retry delay")
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(e.Delay):
		}
	}

	apixRetryExhaustedTotal.WithLabelValues(string(class)).Inc()
	log.Error().
		Err(lastErr).
		Str("error_class", string(class)).
		Int("max_attempts", e.MaxAttempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, e.MaxAttempts, lastErr)
}
