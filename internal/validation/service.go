package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sokopay/sokopay/internal/fraud"
	"github.com/sokopay/sokopay/internal/transaction"
)

var ErrMissingCode = errors.New("transaction id and code are required")

// codePattern matches mobile-money receipt references after normalization.
var codePattern = regexp.MustCompile(`^[A-Z0-9]{8,12}$`)

// amountTolerance absorbs rounding in buyer-asserted amounts: anything under
// one currency unit (100 minor units) counts as a match.
const amountTolerance = 100

//go:generate mockgen -source=service.go -destination=service_mock.go -package=validation
type Repository interface {
	// AppendRecords persists check outcomes in the given order.
	AppendRecords(ctx context.Context, records []*Record) error
	ListByTransaction(ctx context.Context, transactionID string) ([]*Record, error)
}

// Detector is the fraud detector consulted after the checks run.
type Detector interface {
	Inspect(ctx context.Context, in fraud.Input) ([]fraud.Alert, error)
}

type SubmitParams struct {
	TransactionID string
	Code          string
	PayerPhone    string
	PayerName     string
	PaymentMethod string
	AmountPaid    *int64 // minor units; nil when not asserted
	ScreenshotURL string
}

type Result struct {
	TransactionID      string
	VerificationStatus transaction.VerificationStatus
	Records            []*Record
	Message            string
}

// Service runs the submission pipeline: every check outcome is recorded
// whether it passed or not, and a failed check flags the transaction for
// human review instead of rejecting the buyer outright.
type Service struct {
	txRepo   transaction.Repository
	records  Repository
	detector Detector
}

func NewService(txRepo transaction.Repository, records Repository, detector Detector) *Service {
	return &Service{txRepo: txRepo, records: records, detector: detector}
}

func (s *Service) Submit(ctx context.Context, params SubmitParams) (*Result, error) {
	if params.TransactionID == "" || strings.TrimSpace(params.Code) == "" {
		return nil, ErrMissingCode
	}

	tx, err := s.txRepo.GetTransaction(ctx, params.TransactionID)
	if err != nil {
		return nil, err
	}

	clean := strings.ToUpper(strings.TrimSpace(params.Code))

	records := make([]*Record, 0, 3)
	records = append(records, formatCheck(tx.ID, clean))

	duplicates, err := s.txRepo.FindByCode(ctx, clean, tx.ID)
	if err != nil {
		return nil, fmt.Errorf("checking duplicates: %w", err)
	}

	dupIDs := make([]string, 0, len(duplicates))
	for _, d := range duplicates {
		dupIDs = append(dupIDs, d.ID)
	}

	records = append(records, duplicateCheck(tx.ID, dupIDs))

	if params.AmountPaid != nil {
		records = append(records, amountCheck(tx.ID, tx.Amount, *params.AmountPaid))
	}

	if err := s.records.AppendRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("appending validation records: %w", err)
	}

	if _, err := s.detector.Inspect(ctx, fraud.Input{
		TransactionID: tx.ID,
		Code:          clean,
		DuplicateIDs:  dupIDs,
		Attempts:      tx.SubmissionAttempts + 1,
	}); err != nil {
		return nil, fmt.Errorf("fraud inspection: %w", err)
	}

	allPassed := true

	for _, r := range records {
		if !r.Passed() {
			allPassed = false
			break
		}
	}

	status := transaction.VerificationFlagged
	message := "Payment flagged for manual review"

	if allPassed {
		status = transaction.VerificationPendingApproval
		message = "Payment submitted for admin approval"
	}

	details, err := summarize(records)
	if err != nil {
		return nil, fmt.Errorf("encoding verification details: %w", err)
	}

	sub := transaction.Submission{
		Code:                clean,
		PaymentMethod:       firstNonEmpty(params.PaymentMethod, tx.PaymentMethod, "MPESA"),
		BuyerPhone:          firstNonEmpty(params.PayerPhone, tx.BuyerPhone),
		BuyerName:           firstNonEmpty(params.PayerName, tx.BuyerName),
		ScreenshotURL:       params.ScreenshotURL,
		VerificationStatus:  status,
		VerificationDetails: details,
	}

	if err := s.txRepo.ApplySubmission(ctx, tx.ID, sub); err != nil {
		return nil, err
	}

	return &Result{
		TransactionID:      tx.ID,
		VerificationStatus: status,
		Records:            records,
		Message:            message,
	}, nil
}

func (s *Service) ListByTransaction(ctx context.Context, transactionID string) ([]*Record, error) {
	return s.records.ListByTransaction(ctx, transactionID)
}

func formatCheck(txID, clean string) *Record {
	valid := codePattern.MatchString(clean)

	format := "valid"
	if !valid {
		format = "invalid_format"
	}

	return newRecord(txID, CheckFormat, valid, map[string]any{
		"code":   clean,
		"format": format,
	})
}

func duplicateCheck(txID string, dupIDs []string) *Record {
	if len(dupIDs) == 0 {
		return newRecord(txID, CheckDuplicate, true, map[string]any{
			"message": "No duplicates found",
		})
	}

	return newRecord(txID, CheckDuplicate, false, map[string]any{
		"duplicate_ids": dupIDs,
		"message":       "Code already used",
	})
}

func amountCheck(txID string, expected, paid int64) *Record {
	diff := paid - expected

	match := diff > -amountTolerance && diff < amountTolerance

	return newRecord(txID, CheckAmount, match, map[string]any{
		"expected":    expected,
		"paid":        paid,
		"discrepancy": diff,
	})
}

func newRecord(txID string, check CheckType, passed bool, details map[string]any) *Record {
	outcome := OutcomeFailed
	if passed {
		outcome = OutcomePassed
	}

	// Details maps hold only marshalable primitives; a failure here would
	// be a programming error.
	raw, _ := json.Marshal(details)

	return &Record{
		TransactionID: txID,
		CheckType:     check,
		Outcome:       outcome,
		Details:       raw,
	}
}

// summarize builds the compact verification_details blob stored on the
// transaction itself.
func summarize(records []*Record) (json.RawMessage, error) {
	type item struct {
		Type   CheckType `json:"type"`
		Status Outcome   `json:"status"`
	}

	items := make([]item, 0, len(records))
	for _, r := range records {
		items = append(items, item{Type: r.CheckType, Status: r.Outcome})
	}

	return json.Marshal(map[string]any{
		"validations":  items,
		"submitted_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
