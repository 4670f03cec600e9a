package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request
// because the underlying provider has been failing.
var ErrCircuitOpen = errors.New("llm circuit breaker is open")

// BreakerProvider wraps a Provider with a circuit breaker so a flapping
// upstream trips open quickly instead of stalling every turn on timeouts.
type BreakerProvider struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps the given provider with a circuit breaker that
// opens after 3 consecutive failures and probes again after 30 seconds.
func NewBreakerProvider(provider Provider) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        "llm-" + provider.Name(),
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &BreakerProvider{
		provider: provider,
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *BreakerProvider) Name() string {
	return b.provider.Name()
}

func (b *BreakerProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.provider.Complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return result.(*CompletionResponse), nil
}
