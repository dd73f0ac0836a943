package adminlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Actions written by the settlement applier.
const (
	ActionApprovePayment = "approve_payment"
	ActionRejectPayment  = "reject_payment"
	ActionReconcile      = "reconcile_statement"
)

// Entry is one append-only audit record of an administrator action.
type Entry struct {
	ID        int64
	AdminID   uuid.UUID
	Action    string
	Details   json.RawMessage
	CreatedAt time.Time
}

//go:generate mockgen -source=adminlog.go -destination=repository_mock.go -package=adminlog
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
}
