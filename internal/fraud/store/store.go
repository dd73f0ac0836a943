package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sokopay/sokopay/internal/fraud"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateAlert(ctx context.Context, alert *fraud.Alert) error {
	query := `
		INSERT INTO fraud_alerts (transaction_id, alert_type, severity, details, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		alert.TransactionID, alert.AlertType, alert.Severity, []byte(alert.Details),
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating fraud alert: %w", err)
	}

	return nil
}

func (s *Store) ListByTransaction(ctx context.Context, transactionID string) ([]*fraud.Alert, error) {
	query := `
		SELECT id, transaction_id, alert_type, severity, details, created_at
		FROM fraud_alerts
		WHERE transaction_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing fraud alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*fraud.Alert

	for rows.Next() {
		var (
			a           fraud.Alert
			severityStr string
			details     []byte
		)

		if err := rows.Scan(&a.ID, &a.TransactionID, &a.AlertType, &severityStr, &details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning fraud alert: %w", err)
		}

		a.Severity = fraud.Severity(severityStr)
		a.Details = details
		alerts = append(alerts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fraud alerts: %w", err)
	}

	return alerts, nil
}
