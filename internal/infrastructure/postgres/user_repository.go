package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-wager-service/internal/domain/entity"
	"github.com/oksasatya/go-wager-service/internal/domain/repository"
)

// Balances cross the wire as text so NUMERIC never passes through float64.
const userColumns = `id, username, email, password_hash, balance::text, created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("username", username).Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("email", email).Wrap(err)
	}
	return u, nil
}

// Add relies on the users_username_key and users_email_key constraints, so
// two racing registrations for the same name cannot both commit.
func (r *UserRepository) Add(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, balance)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.PasswordHash, u.Balance.StringFixed(2))

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_CONFLICT").
				With("username", u.Username).
				With("constraint", pgErr.ConstraintName).
				Wrap(repository.ErrConflict)
		}
		return oops.Code("USER_INSERT_FAILED").With("username", u.Username).Wrap(err)
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var balance string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &balance, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, oops.Code("BALANCE_DECODE_FAILED").With("value", balance).Wrap(err)
	}
	u.Balance = b
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
