package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sokopay/sokopay/internal/validation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// AppendRecords inserts the records one by one inside a database transaction
// so the audit trail keeps the pipeline's check order.
func (s *Store) AppendRecords(ctx context.Context, records []*validation.Record) error {
	if len(records) == 0 {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO transaction_validations (transaction_id, validation_type, status, details, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	for _, r := range records {
		err := dbTx.QueryRowContext(ctx, query,
			r.TransactionID, r.CheckType, r.Outcome, []byte(r.Details),
		).Scan(&r.ID, &r.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting validation record: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing validation records: %w", err)
	}

	return nil
}

func (s *Store) ListByTransaction(ctx context.Context, transactionID string) ([]*validation.Record, error) {
	query := `
		SELECT id, transaction_id, validation_type, status, details, created_at
		FROM transaction_validations
		WHERE transaction_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing validation records: %w", err)
	}
	defer rows.Close()

	var records []*validation.Record

	for rows.Next() {
		var (
			r          validation.Record
			checkStr   string
			outcomeStr string
			details    []byte
		)

		if err := rows.Scan(&r.ID, &r.TransactionID, &checkStr, &outcomeStr, &details, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning validation record: %w", err)
		}

		r.CheckType = validation.CheckType(checkStr)
		r.Outcome = validation.Outcome(outcomeStr)
		r.Details = details
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating validation records: %w", err)
	}

	return records, nil
}
