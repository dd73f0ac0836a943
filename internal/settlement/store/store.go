package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/transaction"
	txstore "github.com/sokopay/sokopay/internal/transaction/store"
	walletstore "github.com/sokopay/sokopay/internal/wallet/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Settle runs the conditional paid update and the wallet credit in one
// database transaction. A failed credit rolls the status change back, so a
// transaction is never left paid with the seller uncredited.
func (s *Store) Settle(ctx context.Context, transactionID string, params transaction.ApproveParams, sellerID uuid.UUID, payout int64) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning settlement: %w", err)
	}
	defer dbtx.Rollback()

	if err := txstore.New(dbtx).MarkPaid(ctx, transactionID, params); err != nil {
		return err
	}

	if err := walletstore.New(dbtx).CreditPending(ctx, sellerID, payout); err != nil {
		return err
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("committing settlement: %w", err)
	}

	return nil
}
