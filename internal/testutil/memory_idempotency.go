package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oksasatya/go-wager-service/internal/domain/repository"
)

// MemoryIdempotency is an in-memory IdempotencyRepository. TTLs are ignored.
type MemoryIdempotency struct {
	mu      sync.Mutex
	entries map[string]repository.CachedResponse
	locks   map[string]bool
	FailGet bool
}

func NewMemoryIdempotency() *MemoryIdempotency {
	return &MemoryIdempotency{entries: map[string]repository.CachedResponse{}, locks: map[string]bool{}}
}

func (m *MemoryIdempotency) Get(_ context.Context, key string) (*repository.CachedResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet {
		return nil, errors.New("store unavailable")
	}
	if r, ok := m.entries[key]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *MemoryIdempotency) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MemoryIdempotency) Save(_ context.Context, key string, resp repository.CachedResponse, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = resp
	return nil
}

func (m *MemoryIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

var _ repository.IdempotencyRepository = (*MemoryIdempotency)(nil)
