package validation

import (
	"encoding/json"
	"time"
)

// CheckType identifies one check of the submission pipeline. The pipeline
// order is fixed (format, duplicate, amount) so the audit trail reads the
// same for every submission.
type CheckType string

const (
	CheckFormat    CheckType = "format_check"
	CheckDuplicate CheckType = "duplicate_check"
	CheckAmount    CheckType = "amount_check"
)

type Outcome string

const (
	OutcomePassed Outcome = "passed"
	OutcomeFailed Outcome = "failed"
)

// Record is one check outcome for one submission attempt. Records are
// append-only: they are the audit trail, not a short-circuiting guard.
type Record struct {
	ID            int64
	TransactionID string
	CheckType     CheckType
	Outcome       Outcome
	Details       json.RawMessage
	CreatedAt     time.Time
}

func (r *Record) Passed() bool {
	return r.Outcome == OutcomePassed
}
