package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-wager-service/internal/domain/entity"
	"github.com/oksasatya/go-wager-service/internal/domain/repository"
)

// The balance guard is evaluated under the row lock taken by UPDATE. A second
// debit of the same row blocks until the first commits, then re-checks the
// condition against the committed balance.
const debitBalanceSQL = `
	UPDATE users
	SET balance = balance - $1::numeric, updated_at = now()
	WHERE username = $2 AND balance >= $1::numeric
	RETURNING id`

const insertWagerSQL = `
	INSERT INTO wagers (user_id, amount, placed_at, details)
	VALUES ($1, $2::numeric, $3, $4)
	RETURNING id`

type WagerRepository struct {
	db DB
}

func NewWagerRepository(db DB) *WagerRepository {
	return &WagerRepository{db: db}
}

func (r *WagerRepository) PlaceBet(ctx context.Context, username string, amount decimal.Decimal, details string, placedAt time.Time) (*entity.Wager, error) {
	w := &entity.Wager{Amount: amount, PlacedAt: placedAt, Details: details}
	amt := amount.StringFixed(2)

	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, debitBalanceSQL, amt, username).Scan(&w.UserID)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.debitRejected(ctx, tx, username, amt)
		}
		if err != nil {
			return oops.Code("BALANCE_DEBIT_FAILED").With("username", username).Wrap(err)
		}

		if err := tx.QueryRow(ctx, insertWagerSQL, w.UserID, amt, placedAt, details).Scan(&w.ID); err != nil {
			return oops.Code("WAGER_INSERT_FAILED").With("username", username).Wrap(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// debitRejected explains why the guarded UPDATE matched no row.
func (r *WagerRepository) debitRejected(ctx context.Context, tx pgx.Tx, username, amount string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists); err != nil {
		return oops.Code("USER_QUERY_FAILED").With("username", username).Wrap(err)
	}
	if !exists {
		return oops.Code("USER_NOT_FOUND").With("username", username).Wrap(repository.ErrNotFound)
	}
	return oops.Code("INSUFFICIENT_FUNDS").With("username", username).With("amount", amount).Wrap(repository.ErrInsufficientFunds)
}

func (r *WagerRepository) ListByUsername(ctx context.Context, username string, limit int) ([]*entity.Wager, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.id, w.user_id, w.amount::text, w.placed_at, w.details
		FROM wagers w
		JOIN users u ON u.id = w.user_id
		WHERE u.username = $1
		ORDER BY w.placed_at DESC
		LIMIT $2
	`, username, limit)
	if err != nil {
		return nil, oops.Code("WAGER_QUERY_FAILED").With("username", username).Wrap(err)
	}
	defer rows.Close()

	out := make([]*entity.Wager, 0)
	for rows.Next() {
		w := &entity.Wager{}
		var amount string
		if err := rows.Scan(&w.ID, &w.UserID, &amount, &w.PlacedAt, &w.Details); err != nil {
			return nil, oops.Code("WAGER_SCAN_FAILED").Wrap(err)
		}
		if w.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, oops.Code("WAGER_SCAN_FAILED").With("value", amount).Wrap(err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("WAGER_QUERY_FAILED").With("username", username).Wrap(err)
	}
	return out, nil
}

var _ repository.WagerRepository = (*WagerRepository)(nil)
