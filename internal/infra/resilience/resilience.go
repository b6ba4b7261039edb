// Package resilience wraps outbound work in retry, circuit-breaker and
// bulkhead policies. The currency scraper runs behind the breaker and
// retry; the broadcast sender caps its fan-out with the bulkhead.
package resilience

import (
	"context"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds the retry and concurrency knobs, loaded from env.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int
}

// RetryWithBackoff runs fn up to MaxRetries+1 times, doubling the wait
// after each failure and adding up to 50% jitter. A cancelled context
// wins over the retry budget.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	wait := cfg.InitialBackoff
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt >= cfg.MaxRetries {
			return lastErr
		}

		sleep := wait
		if wait > 1 {
			sleep += time.Duration(rand.Int63n(int64(wait) / 2))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		wait *= 2
	}
}

// NewCircuitBreaker builds a breaker that opens after five consecutive
// failures and probes again after ten seconds.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// Bulkhead caps the number of operations in flight.
type Bulkhead struct {
	slots chan struct{}
}

// NewBulkhead creates a bulkhead with maxConcurrency slots.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	return &Bulkhead{slots: make(chan struct{}, maxConcurrency)}
}

// Acquire takes a slot, blocking until one frees up or ctx ends.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (b *Bulkhead) Release() {
	<-b.slots
}
