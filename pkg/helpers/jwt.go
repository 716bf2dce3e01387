package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSigningKeyLen is the shortest HS256 key NewJWTManager accepts.
const MinSigningKeyLen = 32

var (
	ErrWeakSigningKey = fmt.Errorf("jwt signing key must be at least %d bytes", MinSigningKeyLen)
	ErrInvalidTTL     = errors.New("jwt ttl must be positive")
	ErrInvalidToken   = errors.New("invalid token")
)

// JWTManager issues and validates HS256 bearer tokens whose subject is the
// username. Issuer and audience are neither set nor checked.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) (*JWTManager, error) {
	if len(secret) < MinSigningKeyLen {
		return nil, ErrWeakSigningKey
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

type Claims struct {
	jwt.RegisteredClaims
}

// Username is the subject the token was issued for.
func (c *Claims) Username() string { return c.Subject }

// Issue signs a token for username that expires after the configured TTL.
func (m *JWTManager) Issue(username string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Parse validates the signature and expiry of tokenStr.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
