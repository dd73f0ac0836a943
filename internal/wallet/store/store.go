package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/wallet"
)

// DBTX is satisfied by *sql.DB and *sql.Tx, so the credit can run inside a
// settlement transaction the caller owns.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

// CreditPending adds to the pending balance with a single SQL atomic add.
// When the seller has no wallet row yet, the upsert path creates it; both
// paths are atomic under concurrent settlements.
func (s *Store) CreditPending(ctx context.Context, userID uuid.UUID, amount int64) error {
	query := `
		UPDATE wallets
		SET pending_balance = pending_balance + $1, updated_at = NOW()
		WHERE user_id = $2
	`

	res, err := s.db.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("crediting pending balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("crediting pending balance: %w", err)
	}

	if affected > 0 {
		return nil
	}

	upsert := `
		INSERT INTO wallets (user_id, pending_balance, available_balance, updated_at)
		VALUES ($1, $2, 0, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET pending_balance = wallets.pending_balance + EXCLUDED.pending_balance, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, upsert, userID, amount); err != nil {
		return fmt.Errorf("creating wallet: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT user_id, pending_balance, available_balance, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var w wallet.Wallet

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&w.UserID, &w.PendingBalance, &w.AvailableBalance, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wallet.ErrNotFound
		}

		return nil, fmt.Errorf("getting wallet: %w", err)
	}

	return &w, nil
}
