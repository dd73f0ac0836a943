package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the gross lifecycle state of a transaction.
type Status string

const (
	// StatusPending means the transaction was created at checkout and is
	// awaiting buyer payment evidence. Rejected transactions also revert
	// here so the buyer may resubmit.
	StatusPending Status = "pending"
	// StatusProcessing means the buyer submitted evidence and the
	// transaction awaits administrator adjudication.
	StatusProcessing Status = "processing"
	// StatusPaid is terminal for the cycle: an administrator approved the
	// payment and the seller wallet was credited.
	StatusPaid Status = "paid"
)

// VerificationStatus is the moderation sub-state, distinct from Status.
type VerificationStatus string

const (
	VerificationNone            VerificationStatus = ""
	VerificationPendingApproval VerificationStatus = "pending_approval"
	VerificationFlagged         VerificationStatus = "flagged"
	VerificationApproved        VerificationStatus = "approved"
	VerificationRejected        VerificationStatus = "rejected"
)

var (
	ErrNotFound = errors.New("transaction not found")
	// ErrCodeConflict is returned when the storage layer rejects a
	// transaction code already claimed by a non-rejected transaction.
	ErrCodeConflict = errors.New("transaction code already in use")
	// ErrNotAwaitingApproval is returned when approve/reject targets a
	// transaction that is not in the processing state.
	ErrNotAwaitingApproval = errors.New("transaction is not awaiting adjudication")
)

// Transaction is a single buyer-to-seller payment claim moving through the
// verification and settlement lifecycle. Product fields are snapshotted at
// checkout so later catalog edits do not alter the record.
type Transaction struct {
	ID              string
	SellerID        uuid.UUID
	ProductID       *uuid.UUID
	ItemName        string
	ItemDescription string
	ItemImages      []string

	Amount   int64 // minor units
	Currency string

	BuyerName    string
	BuyerPhone   string
	BuyerEmail   string
	BuyerAddress string

	PaymentMethod string
	PlatformFee   int64
	SellerPayout  int64
	FeePercent    float64 // rate applied when fee/payout were last computed

	Status             Status
	VerificationStatus VerificationStatus

	TransactionCode      string
	ScreenshotURL        string
	VerificationDetails  json.RawMessage
	SubmissionAttempts   int
	RejectionReason      string
	AdminRejectionReason string
	ApprovedBy           *uuid.UUID

	CreatedAt  time.Time
	UpdatedAt  *time.Time
	PaidAt     *time.Time
	ApprovedAt *time.Time
	RejectedAt *time.Time
}

// NewID allocates a human-legible transaction identifier. The base36
// millisecond prefix keeps ids sortable by creation time; the uuid suffix
// makes collisions practically impossible.
func NewID() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := strings.ToUpper(uuid.NewString()[:8])

	return fmt.Sprintf("ORD-%s-%s", ts, suffix)
}
