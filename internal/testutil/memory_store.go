package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-wager-service/internal/domain/entity"
	"github.com/oksasatya/go-wager-service/internal/domain/repository"
)

// MemoryStore implements UserRepository and WagerRepository in memory with
// the same atomicity guarantees as the postgres implementation. It lets
// service and handler tests run without a database.
type MemoryStore struct {
	mu     sync.Mutex
	seq    int
	users  map[string]*entity.User
	wagers []*entity.Wager
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*entity.User)}
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("email %q: %w", email, repository.ErrNotFound)
}

func (s *MemoryStore) Add(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("user %q: %w", u.Username, repository.ErrConflict)
		}
	}
	s.seq++
	now := time.Now().UTC()
	u.ID = fmt.Sprintf("user-%d", s.seq)
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	s.users[u.Username] = &cp
	return nil
}

func (s *MemoryStore) PlaceBet(ctx context.Context, username string, amount decimal.Decimal, details string, placedAt time.Time) (*entity.Wager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	if u.Balance.LessThan(amount) {
		return nil, fmt.Errorf("user %q: %w", username, repository.ErrInsufficientFunds)
	}
	u.Balance = u.Balance.Sub(amount)
	u.UpdatedAt = time.Now().UTC()
	s.seq++
	w := &entity.Wager{
		ID:       fmt.Sprintf("wager-%d", s.seq),
		UserID:   u.ID,
		Amount:   amount,
		PlacedAt: placedAt,
		Details:  details,
	}
	s.wagers = append(s.wagers, w)
	cp := *w
	return &cp, nil
}

func (s *MemoryStore) ListByUsername(_ context.Context, username string, limit int) ([]*entity.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Wager, 0)
	u, ok := s.users[username]
	if !ok {
		return out, nil
	}
	for _, w := range s.wagers {
		if w.UserID == u.ID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PlacedAt.After(out[j].PlacedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// WagerCount returns the number of recorded wagers across all users.
func (s *MemoryStore) WagerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wagers)
}

var (
	_ repository.UserRepository  = (*MemoryStore)(nil)
	_ repository.WagerRepository = (*MemoryStore)(nil)
)
