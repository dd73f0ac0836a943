package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sokopay/sokopay/internal/metrics"
)

// Alerts are advisory. They flag suspicious patterns for a human moderator
// and never block settlement on their own.

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

const (
	AlertDuplicateCode     = "duplicate_transaction_code"
	AlertResubmissionAbuse = "excessive_resubmission"
	AlertStatementMismatch = "statement_amount_mismatch"
)

type Alert struct {
	ID            int64
	TransactionID string
	AlertType     string
	Severity      Severity
	Details       json.RawMessage
	CreatedAt     time.Time
}

// Input is the evidence a rule inspects for one submission.
type Input struct {
	TransactionID string
	Code          string
	// DuplicateIDs are other transactions carrying the same code, found by
	// the validation engine's duplicate check.
	DuplicateIDs []string
	// Attempts is the submission attempt count including this submission.
	Attempts int
}

// Rule is one independent fraud signal. Rules return zero or more alerts;
// the detector unions and persists them.
type Rule interface {
	Name() string
	Inspect(ctx context.Context, in Input) ([]Alert, error)
}

//go:generate mockgen -source=fraud.go -destination=fraud_mock.go -package=fraud
type AlertRepository interface {
	CreateAlert(ctx context.Context, alert *Alert) error
	ListByTransaction(ctx context.Context, transactionID string) ([]*Alert, error)
}

type Detector struct {
	rules  []Rule
	alerts AlertRepository
}

func NewDetector(alerts AlertRepository) *Detector {
	return &Detector{
		rules:  []Rule{duplicateCodeRule{}, resubmissionRule{}},
		alerts: alerts,
	}
}

// Inspect runs every rule and persists the union of their alerts. Rules are
// independent; a rule error aborts the inspection since a half-written alert
// trail is worse than none for the moderation audit.
func (d *Detector) Inspect(ctx context.Context, in Input) ([]Alert, error) {
	var fired []Alert

	for _, rule := range d.rules {
		alerts, err := rule.Inspect(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}

		fired = append(fired, alerts...)
	}

	for i := range fired {
		if err := d.alerts.CreateAlert(ctx, &fired[i]); err != nil {
			return nil, fmt.Errorf("persisting alert %s: %w", fired[i].AlertType, err)
		}

		metrics.FraudAlerts.WithLabelValues(fired[i].AlertType).Inc()
	}

	return fired, nil
}

// duplicateCodeRule fires when the submitted code is already carried by
// another transaction, regardless of that transaction's status.
type duplicateCodeRule struct{}

func (duplicateCodeRule) Name() string { return "duplicate_code" }

func (duplicateCodeRule) Inspect(_ context.Context, in Input) ([]Alert, error) {
	if len(in.DuplicateIDs) == 0 {
		return nil, nil
	}

	details, err := json.Marshal(map[string]any{
		"code":                   in.Code,
		"duplicate_transactions": in.DuplicateIDs,
	})
	if err != nil {
		return nil, err
	}

	return []Alert{{
		TransactionID: in.TransactionID,
		AlertType:     AlertDuplicateCode,
		Severity:      SeverityHigh,
		Details:       details,
	}}, nil
}

// resubmissionRule flags buyers cycling through reject-and-resubmit. The
// platform allows unbounded resubmission, so repeated attempts only surface
// to moderators instead of locking the buyer out.
type resubmissionRule struct{}

const resubmissionThreshold = 3

func (resubmissionRule) Name() string { return "excessive_resubmission" }

func (resubmissionRule) Inspect(_ context.Context, in Input) ([]Alert, error) {
	if in.Attempts < resubmissionThreshold {
		return nil, nil
	}

	details, err := json.Marshal(map[string]any{
		"attempts": in.Attempts,
	})
	if err != nil {
		return nil, err
	}

	return []Alert{{
		TransactionID: in.TransactionID,
		AlertType:     AlertResubmissionAbuse,
		Severity:      SeverityMedium,
		Details:       details,
	}}, nil
}
