// Package ratelimit enforces the fixed pacing delay between successive API
// calls. The vendor throttles aggressively on request rate; pacing below the
// limit is required behavior, because exceeding it risks request rejection.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the pacing delay between successive API calls.
const DefaultInterval = 500 * time.Millisecond

// Pacer spaces out successive calls by a fixed interval. The first call
// passes immediately; every later call waits until the interval since the
// previous call has elapsed.
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewPacer creates a pacer with the given interval. Non-positive intervals
// fall back to DefaultInterval.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pacer{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the next call is allowed or the context is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacing wait: %w", err)
	}
	return nil
}

// Interval returns the configured pacing interval.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
