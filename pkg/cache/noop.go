package cache

import (
	"context"
	"time"
)

// Noop is a Cache that stores nothing. Every Get is a miss. Used in tests
// and when no Redis is configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (n *Noop) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (n *Noop) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (n *Noop) Ping(ctx context.Context) error { return nil }
