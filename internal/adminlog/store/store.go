package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sokopay/sokopay/internal/adminlog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, entry *adminlog.Entry) error {
	query := `
		INSERT INTO admin_logs (admin_id, action, details, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		entry.AdminID, entry.Action, []byte(entry.Details),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending admin log: %w", err)
	}

	return nil
}
