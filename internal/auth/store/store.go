package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/auth"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) RoleByUserID(ctx context.Context, userID uuid.UUID) (auth.Role, error) {
	var role string

	err := s.db.QueryRowContext(ctx,
		"SELECT role FROM user_roles WHERE user_id = $1", userID,
	).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", auth.ErrRoleNotFound
		}

		return "", fmt.Errorf("getting user role: %w", err)
	}

	return auth.Role(role), nil
}
