package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings configures NewBreaker.
type BreakerSettings struct {
	// Threshold is the number of consecutive failures that opens the
	// circuit. Zero disables the breaker.
	Threshold uint32
	// Cooldown is how long the circuit stays open before a probe call.
	Cooldown time.Duration
	Logger   *zap.Logger
}

// Breaker wraps a Completer in a circuit breaker. Rate-limit errors and
// caller cancellation do not count as failures.
type Breaker struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker returns next unchanged when the threshold is zero.
func NewBreaker(next Completer, s BreakerSettings) Completer {
	if s.Threshold == 0 {
		return next
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	threshold := s.Threshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     s.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsRateLimit(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Breaker{next: next, cb: cb}
}

// Complete forwards to the wrapped completer unless the circuit is open.
func (b *Breaker) Complete(ctx context.Context, req Request) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Name returns the wrapped provider's name.
func (b *Breaker) Name() string {
	return b.next.Name()
}

// State exposes the breaker state for diagnostics.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
