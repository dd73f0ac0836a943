package transaction

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	// FindByCode returns every transaction other than excludeID carrying
	// the given normalized code, regardless of status.
	FindByCode(ctx context.Context, code, excludeID string) ([]CodeMatch, error)

	// ApplySubmission records buyer payment evidence and advances the
	// transaction to processing. Returns ErrCodeConflict when the storage
	// uniqueness constraint on active codes is violated.
	ApplySubmission(ctx context.Context, id string, sub Submission) error

	// MarkPaid settles the transaction. The update is conditional on
	// status=processing; ErrNotAwaitingApproval otherwise.
	MarkPaid(ctx context.Context, id string, params ApproveParams) error

	// MarkRejected reverts the transaction to pending for resubmission.
	// Conditional on status=processing like MarkPaid.
	MarkRejected(ctx context.Context, id string, params RejectParams) error
}

// CodeMatch is the slice of a transaction the duplicate check needs.
type CodeMatch struct {
	ID        string
	Status    Status
	CreatedAt time.Time
}

// Submission carries the merged result of a buyer evidence submission.
type Submission struct {
	Code                string
	PaymentMethod       string
	BuyerPhone          string
	BuyerName           string
	ScreenshotURL       string
	VerificationStatus  VerificationStatus
	VerificationDetails json.RawMessage
}

type ApproveParams struct {
	ApprovedBy   uuid.UUID
	PlatformFee  int64
	SellerPayout int64
	FeePercent   float64
	ApprovedAt   time.Time
	PaidAt       time.Time
}

type RejectParams struct {
	Reason     string
	RejectedAt time.Time
}

type ListFilter struct {
	Status             *Status
	VerificationStatus *VerificationStatus
	SellerID           *uuid.UUID
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}
