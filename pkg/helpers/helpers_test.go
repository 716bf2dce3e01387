package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("s", 32)

func TestPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("pepper")
	require.NoError(t, err)

	hash := h.Hash("hunter2")
	assert.NotEqual(t, "hunter2", hash)
	assert.Equal(t, hash, h.Hash("hunter2"), "hash must be deterministic")
	assert.True(t, h.Verify("hunter2", hash))
	assert.False(t, h.Verify("hunter3", hash))
	assert.False(t, h.Verify("hunter2", ""))

	other, err := NewPasswordHasher("paprika")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other.Hash("hunter2"))
	assert.False(t, other.Verify("hunter2", hash))
}

func TestPasswordHasher_EmptySalt(t *testing.T) {
	h, err := NewPasswordHasher("")
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrEmptySalt)
}

func TestPasswordHasher_EmptyPassword(t *testing.T) {
	h, err := NewPasswordHasher("pepper")
	require.NoError(t, err)
	assert.True(t, h.Verify("", h.Hash("")))
}

func TestNewJWTManager_Rejects(t *testing.T) {
	_, err := NewJWTManager("short", time.Hour)
	assert.ErrorIs(t, err, ErrWeakSigningKey)

	_, err = NewJWTManager(testSecret, 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestJWTManager_IssueAndParse(t *testing.T) {
	m, err := NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)

	token, exp, err := m.Issue("alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())
	assert.Empty(t, claims.Issuer)
}

func TestJWTManager_ParseRejects(t *testing.T) {
	m, err := NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)
	other, err := NewJWTManager(strings.Repeat("x", 32), time.Hour)
	require.NoError(t, err)

	foreign, _, err := other.Issue("alice")
	require.NoError(t, err)

	expired, err := NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Issue("alice")
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"wrong key":      foreign,
		"expired":        stale,
		"missing expiry": noExp,
		"alg none":       none,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := m.Parse(token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestNewLogger_Formatter(t *testing.T) {
	var buf strings.Builder
	dev := newLogger(&buf, "wagers", "development")
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)
	assert.Contains(t, buf.String(), "logger initialized")

	buf.Reset()
	prod := newLogger(&buf, "wagers", "production")
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)
	assert.Contains(t, buf.String(), `"app":"wagers"`)
}
