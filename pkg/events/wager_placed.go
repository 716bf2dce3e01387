package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// WagerPlaced is published after a bet commits. Amount travels as a decimal
// string so consumers never round through float64.
type WagerPlaced struct {
	WagerID  string          `json:"wager_id"`
	UserID   string          `json:"user_id"`
	Username string          `json:"username"`
	Amount   decimal.Decimal `json:"amount"`
	PlacedAt time.Time       `json:"placed_at"`
	Details  string          `json:"details"`
}
