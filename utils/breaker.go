package utils

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"price-hunter/internal/types"
)

// Breaker stops calling a store that keeps failing across searches.
// While open, calls fail immediately with gobreaker.ErrOpenState.
// A call abandoned by its caller (context.Canceled) is not held against the store.
type Breaker struct {
	breaker *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker that opens after failures consecutive errors
// and probes the store again after cooldown.
func NewBreaker(name string, failures uint32, cooldown time.Duration, logger types.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return failures > 0 && counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s changed from %s to %s", name, from, to)
		},
	}

	return &Breaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return b.breaker.Execute(fn)
}

// IsOpen returns true if the breaker currently rejects calls
func (b *Breaker) IsOpen() bool {
	return b.breaker.State() == gobreaker.StateOpen
}
