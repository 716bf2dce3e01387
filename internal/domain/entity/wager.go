package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxDetailsLen bounds Wager.Details and mirrors the column width.
const MaxDetailsLen = 255

// Wager is an immutable record of a debit against a user's balance.
type Wager struct {
	ID       string
	UserID   string
	Amount   decimal.Decimal
	PlacedAt time.Time
	Details  string
}
