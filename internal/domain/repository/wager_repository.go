package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-wager-service/internal/domain/entity"
)

// WagerRepository is the ledger: it debits balances and records wagers.
type WagerRepository interface {
	// PlaceBet atomically debits amount from the user's balance and records
	// the wager. It returns ErrNotFound or ErrInsufficientFunds without
	// changing anything. Concurrent calls for the same user serialize.
	PlaceBet(ctx context.Context, username string, amount decimal.Decimal, details string, placedAt time.Time) (*entity.Wager, error)
	// ListByUsername returns the user's wagers, newest first.
	ListByUsername(ctx context.Context, username string, limit int) ([]*entity.Wager, error)
}
