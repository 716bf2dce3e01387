package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
)

// ErrEmptySalt is returned when the hasher is built without a salt.
var ErrEmptySalt = errors.New("password salt must not be empty")

// PasswordHasher derives credential hashes with HMAC-SHA256 keyed by a
// deployment-wide salt. Output is deterministic, so two users with the same
// password share a hash; the salt must stay secret.
type PasswordHasher struct {
	salt []byte
}

func NewPasswordHasher(salt string) (*PasswordHasher, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}
	return &PasswordHasher{salt: []byte(salt)}, nil
}

// Hash returns base64(HMAC-SHA256(key=salt, msg=password||salt)).
func (h *PasswordHasher) Hash(password string) string {
	mac := hmac.New(sha256.New, h.salt)
	mac.Write([]byte(password))
	mac.Write(h.salt)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether password hashes to stored.
func (h *PasswordHasher) Verify(password, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(password)), []byte(stored)) == 1
}
