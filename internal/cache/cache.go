// Package cache is the injected answer-cache abstraction. The resolution
// chain consults it before running the language cascade; tests use the
// no-op implementation so cache state never leaks into assertions.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// AnswerCache stores accepted answers keyed by question text.
type AnswerCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, answer string)
}

// Noop is a cache that stores nothing.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) (string, bool) { return "", false }
func (Noop) Set(ctx context.Context, key, answer string)        {}

// LRU is an exact-match cache with per-entry TTL.
type LRU struct {
	inner *lru.LRU[string, string]
}

// NewLRU creates an LRU cache holding at most size entries for at most ttl.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = 512
	}
	return &LRU{inner: lru.NewLRU[string, string](size, nil, ttl)}
}

func (c *LRU) Get(ctx context.Context, key string) (string, bool) {
	return c.inner.Get(key)
}

func (c *LRU) Set(ctx context.Context, key, answer string) {
	c.inner.Add(key, answer)
}
