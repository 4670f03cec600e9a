package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider enforces a per-minute request budget in front of a
// Provider. The budget refills continuously, so a quiet period earns back
// a burst of up to the full budget.
type RateLimitedProvider struct {
	provider Provider

	mu     sync.Mutex
	budget float64
	max    float64
	last   time.Time
}

// NewRateLimitedProvider wraps provider so at most rpm requests per
// minute reach it. Complete blocks until budget is available or the
// context expires.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	return &RateLimitedProvider{
		provider: provider,
		budget:   float64(rpm),
		max:      float64(rpm),
		last:     time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string { return r.provider.Name() }

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	for !r.take() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return r.provider.Complete(ctx, req)
}

// take refills the budget for the elapsed time and spends one request
// from it, reporting whether one was available.
func (r *RateLimitedProvider) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.budget += now.Sub(r.last).Minutes() * r.max
	if r.budget > r.max {
		r.budget = r.max
	}
	r.last = now

	if r.budget < 1 {
		return false
	}
	r.budget--
	return true
}
