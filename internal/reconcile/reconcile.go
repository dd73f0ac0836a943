// Package reconcile matches uploaded mobile money statements against the
// transactions buyers claimed to have paid.
package reconcile

import (
	"io"
	"time"
)

type Provider string

const (
	ProviderMPESA Provider = "mpesa"
)

// StatementEntry is one received payment row from a provider statement.
type StatementEntry struct {
	Code        string
	Amount      int64 // minor units
	PayerDetail string
	CompletedAt time.Time
}

// Parser turns a provider statement file into entries. Implementations must
// tolerate the cover rows and footers the providers wrap their exports in.
type Parser interface {
	Parse(r io.Reader) ([]StatementEntry, error)
}

type MatchOutcome string

const (
	// OutcomeMatched means the code exists and the amounts agree.
	OutcomeMatched MatchOutcome = "matched"
	// OutcomeAmountMismatch means the code exists but the statement amount
	// disagrees with the transaction amount beyond tolerance.
	OutcomeAmountMismatch MatchOutcome = "amount_mismatch"
	// OutcomeUnknownCode means no transaction claimed this statement row.
	OutcomeUnknownCode MatchOutcome = "unknown_code"
)

// Match is one statement entry and its reconciliation verdict.
type Match struct {
	Entry         StatementEntry
	Outcome       MatchOutcome
	TransactionID string // empty for unknown codes
	Expected      int64  // transaction amount, when matched to one
}

// AbsentCode is a claimed code the statement never showed: a transaction
// awaiting adjudication whose submitted code has no statement row backing it.
type AbsentCode struct {
	TransactionID string
	Code          string
	Amount        int64
}

// Report summarizes one statement run.
type Report struct {
	Provider   Provider
	Entries    int
	Matched    int
	Mismatched int
	Unknown    int
	Matches    []Match
	Absent     []AbsentCode
	RanAt      time.Time
}
