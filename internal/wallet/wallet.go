package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("wallet not found")

// Wallet is a seller's balance aggregate. The payment core only ever adds to
// the pending balance; withdrawals are someone else's problem.
type Wallet struct {
	UserID           uuid.UUID
	PendingBalance   int64 // minor units, approved but not withdrawn
	AvailableBalance int64 // minor units
	UpdatedAt        *time.Time
}

//go:generate mockgen -source=wallet.go -destination=repository_mock.go -package=wallet
type Repository interface {
	// CreditPending atomically adds amount to the seller's pending balance.
	// Implementations must use a storage-level atomic add so concurrent
	// settlements for the same seller never lose an increment.
	CreditPending(ctx context.Context, userID uuid.UUID, amount int64) error

	Get(ctx context.Context, userID uuid.UUID) (*Wallet, error)
}
