package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sokopay/sokopay/internal/adminlog"
	"github.com/sokopay/sokopay/internal/auth"
	"github.com/sokopay/sokopay/internal/encoding"
	"github.com/sokopay/sokopay/internal/fraud"
	"github.com/sokopay/sokopay/internal/metrics"
	"github.com/sokopay/sokopay/internal/transaction"
)

var ErrUnknownProvider = errors.New("unknown statement provider")

// amountTolerance mirrors the submission pipeline's amount check: statement
// figures within one currency unit of the transaction amount count as a match.
const amountTolerance = 100

// Service runs provider statements against the transaction ledger. Parsers
// are registered by the caller, keyed by provider.
type Service struct {
	parsers map[Provider]Parser
	txRepo  transaction.Repository
	alerts  fraud.AlertRepository
	audit   adminlog.Repository
	logger  *slog.Logger
}

func NewService(parsers map[Provider]Parser, txRepo transaction.Repository, alerts fraud.AlertRepository, audit adminlog.Repository, logger *slog.Logger) *Service {
	return &Service{
		parsers: parsers,
		txRepo:  txRepo,
		alerts:  alerts,
		audit:   audit,
		logger:  logger,
	}
}

// Run reconciles one uploaded statement. Reconciliation is advisory: amount
// mismatches raise fraud alerts on the affected transactions but never change
// transaction state themselves.
func (s *Service) Run(ctx context.Context, admin *auth.Identity, provider Provider, r io.Reader) (*Report, error) {
	if err := auth.RequireAdmin(admin); err != nil {
		return nil, err
	}

	parser, ok := s.parsers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("normalizing statement encoding: %w", err)
	}

	entries, err := parser.Parse(utf8r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s statement: %w", provider, err)
	}

	report := &Report{
		Provider: provider,
		Entries:  len(entries),
		RanAt:    time.Now().UTC(),
	}

	for _, entry := range entries {
		match, err := s.matchEntry(ctx, entry)
		if err != nil {
			return nil, err
		}

		switch match.Outcome {
		case OutcomeMatched:
			report.Matched++
		case OutcomeAmountMismatch:
			report.Mismatched++
		case OutcomeUnknownCode:
			report.Unknown++
		}

		report.Matches = append(report.Matches, match)
	}

	absent, err := s.absentCodes(ctx, entries)
	if err != nil {
		return nil, err
	}

	report.Absent = absent

	s.appendAudit(ctx, admin, report)

	return report, nil
}

// absentCodes walks the other direction: transactions awaiting adjudication
// whose claimed codes never appear in the statement. Moderators reject those
// with confidence instead of waiting for the money to show up.
func (s *Service) absentCodes(ctx context.Context, entries []StatementEntry) ([]AbsentCode, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		seen[entry.Code] = struct{}{}
	}

	processing := transaction.StatusProcessing

	claimed, err := s.txRepo.ListTransactions(ctx, transaction.ListFilter{Status: &processing})
	if err != nil {
		return nil, fmt.Errorf("listing claimed transactions: %w", err)
	}

	var absent []AbsentCode

	for _, tx := range claimed {
		if tx.TransactionCode == "" {
			continue
		}

		if _, ok := seen[tx.TransactionCode]; ok {
			continue
		}

		absent = append(absent, AbsentCode{
			TransactionID: tx.ID,
			Code:          tx.TransactionCode,
			Amount:        tx.Amount,
		})
	}

	return absent, nil
}

func (s *Service) matchEntry(ctx context.Context, entry StatementEntry) (Match, error) {
	claims, err := s.txRepo.FindByCode(ctx, entry.Code, "")
	if err != nil {
		return Match{}, fmt.Errorf("looking up code %s: %w", entry.Code, err)
	}

	if len(claims) == 0 {
		return Match{Entry: entry, Outcome: OutcomeUnknownCode}, nil
	}

	// Multiple claims on one code are already flagged by the submission
	// pipeline; reconcile against the earliest claim.
	tx, err := s.txRepo.GetTransaction(ctx, claims[0].ID)
	if err != nil {
		return Match{}, fmt.Errorf("loading transaction %s: %w", claims[0].ID, err)
	}

	match := Match{
		Entry:         entry,
		TransactionID: tx.ID,
		Expected:      tx.Amount,
	}

	diff := entry.Amount - tx.Amount
	if diff > -amountTolerance && diff < amountTolerance {
		match.Outcome = OutcomeMatched
		return match, nil
	}

	match.Outcome = OutcomeAmountMismatch

	if err := s.raiseMismatchAlert(ctx, tx.ID, entry, tx.Amount); err != nil {
		return Match{}, err
	}

	return match, nil
}

func (s *Service) raiseMismatchAlert(ctx context.Context, txID string, entry StatementEntry, expected int64) error {
	details, err := json.Marshal(map[string]any{
		"code":             entry.Code,
		"statement_amount": entry.Amount,
		"expected_amount":  expected,
	})
	if err != nil {
		return fmt.Errorf("encoding alert details: %w", err)
	}

	alert := &fraud.Alert{
		TransactionID: txID,
		AlertType:     fraud.AlertStatementMismatch,
		Severity:      fraud.SeverityMedium,
		Details:       details,
	}

	if err := s.alerts.CreateAlert(ctx, alert); err != nil {
		return fmt.Errorf("persisting mismatch alert: %w", err)
	}

	metrics.FraudAlerts.WithLabelValues(fraud.AlertStatementMismatch).Inc()

	return nil
}

// appendAudit records the run summary; reconciliation results were already
// returned, so audit failure is logged only.
func (s *Service) appendAudit(ctx context.Context, admin *auth.Identity, report *Report) {
	raw, _ := json.Marshal(map[string]any{
		"provider":   report.Provider,
		"entries":    report.Entries,
		"matched":    report.Matched,
		"mismatched": report.Mismatched,
		"unknown":    report.Unknown,
		"absent":     len(report.Absent),
	})

	entry := &adminlog.Entry{
		AdminID: admin.UserID,
		Action:  adminlog.ActionReconcile,
		Details: raw,
	}

	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append reconcile audit entry", "provider", report.Provider, "error", err)
	}
}
