package repository

import (
	"context"
	"time"
)

// CachedResponse is a stored HTTP reply replayed for a repeated Idempotency-Key.
// Fingerprint identifies the request body the reply was produced for.
type CachedResponse struct {
	StatusCode  int    `json:"status_code"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

type IdempotencyRepository interface {
	// Get returns nil, nil when nothing is stored under key.
	Get(ctx context.Context, key string) (*CachedResponse, error)
	// Reserve claims key for an in-flight request. It reports false when
	// another request already holds it.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Save(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
