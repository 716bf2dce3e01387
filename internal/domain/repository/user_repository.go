package repository

import (
	"context"

	"github.com/oksasatya/go-wager-service/internal/domain/entity"
)

// UserRepository is the account directory.
type UserRepository interface {
	// FindByUsername returns ErrNotFound when no user has that username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// FindByEmail returns ErrNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Add inserts u and fills its ID and timestamps. A duplicate username or
	// email yields ErrConflict, even under concurrent registration.
	Add(ctx context.Context, u *entity.User) error
}
