package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered account holding a spendable balance.
// PasswordHash is the HMAC digest produced by helpers.PasswordHasher; it never
// leaves the service.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string `json:"-"`
	Balance      decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
