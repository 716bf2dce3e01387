package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-wager-service/internal/domain/entity"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

const (
	TestSalt   = "test-salt"
	TestSecret = "0123456789abcdef0123456789abcdef"
)

// NewHasher returns a hasher keyed with TestSalt.
func NewHasher(t testing.TB) *helpers.PasswordHasher {
	t.Helper()
	h, err := helpers.NewPasswordHasher(TestSalt)
	require.NoError(t, err)
	return h
}

// NewJWT returns a one-hour token manager keyed with TestSecret.
func NewJWT(t testing.TB) *helpers.JWTManager {
	t.Helper()
	m, err := helpers.NewJWTManager(TestSecret, time.Hour)
	require.NoError(t, err)
	return m
}

// NewUser builds a user whose password hashes under TestSalt.
func NewUser(t testing.TB, username, password string, balance int64) *entity.User {
	t.Helper()
	return &entity.User{
		ID:           "id-" + username,
		Username:     username,
		Email:        strings.ToLower(username) + "@example.com",
		PasswordHash: NewHasher(t).Hash(password),
		Balance:      decimal.NewFromInt(balance),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}
