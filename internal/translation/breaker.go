package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/markanki/internal/vocab"
)

// BreakerTranslator retries a translator and stops calling it once it keeps
// failing
type BreakerTranslator struct {
	inner    Translator
	cb       *gobreaker.CircuitBreaker
	attempts int
	backoff  time.Duration
}

// NewBreakerTranslator wraps inner in a circuit breaker. The breaker opens
// after three consecutive failures and half-opens again after a minute.
func NewBreakerTranslator(name string, inner Translator, attempts int, backoff time.Duration) *BreakerTranslator {
	if attempts < 1 {
		attempts = 1
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &BreakerTranslator{
		inner:    inner,
		cb:       gobreaker.NewCircuitBreaker(settings),
		attempts: attempts,
		backoff:  backoff,
	}
}

// Name returns the breaker name, the provider it guards
func (b *BreakerTranslator) Name() string {
	return b.cb.Name()
}

// State reports the breaker state
func (b *BreakerTranslator) State() gobreaker.State {
	return b.cb.State()
}

// TranslateBatch calls the wrapped translator until it succeeds, the
// attempts run out or the breaker opens
func (b *BreakerTranslator) TranslateBatch(ctx context.Context, words []vocab.Record) ([]Result, error) {
	var lastErr error

	for attempt := 1; attempt <= b.attempts; attempt++ {
		out, err := b.cb.Execute(func() (interface{}, error) {
			return b.inner.TranslateBatch(ctx, words)
		})
		if err == nil {
			results, _ := out.([]Result)
			return results, nil
		}

		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}
		if attempt == b.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.backoff * time.Duration(attempt)):
		}
	}

	return nil, fmt.Errorf("translation failed: %w", lastErr)
}
