// Package settlement applies admin approve/reject decisions to payments
// awaiting approval.
package settlement

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/adminlog"
	"github.com/sokopay/sokopay/internal/auth"
	"github.com/sokopay/sokopay/internal/fees"
	"github.com/sokopay/sokopay/internal/metrics"
	"github.com/sokopay/sokopay/internal/transaction"
)

const defaultRejectReason = "Payment verification failed"

//go:generate mockgen -source=service.go -destination=service_mock.go -package=settlement

// Settler commits the paid status and the seller wallet credit as one
// storage transaction. Either both writes land or neither does.
type Settler interface {
	Settle(ctx context.Context, transactionID string, params transaction.ApproveParams, sellerID uuid.UUID, payout int64) error
}

// PlatformConfig supplies the fee percentage in force at approval time.
// The checkout-time snapshot on the transaction is informational only.
type PlatformConfig interface {
	PlatformFeePercent() float64
}

// Service is the only writer of paid status and seller wallet credits.
type Service struct {
	txRepo  transaction.Repository
	settler Settler
	audit   adminlog.Repository
	cfg     PlatformConfig
	logger  *slog.Logger
}

func NewService(txRepo transaction.Repository, settler Settler, audit adminlog.Repository, cfg PlatformConfig, logger *slog.Logger) *Service {
	return &Service{txRepo: txRepo, settler: settler, audit: audit, cfg: cfg, logger: logger}
}

// Approve settles a processing transaction: it recomputes the fee split from
// the currently configured fee percentage, marks the transaction paid, and
// credits the seller's pending balance. The conditional status update inside
// Settle is what makes concurrent approvals of the same transaction safe;
// only one caller sees a nil error, so the wallet is credited exactly once.
func (s *Service) Approve(ctx context.Context, admin *auth.Identity, transactionID, notes string) (*transaction.Transaction, error) {
	if err := auth.RequireAdmin(admin); err != nil {
		return nil, err
	}

	tx, err := s.txRepo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	feePercent := s.cfg.PlatformFeePercent()
	fee, payout := fees.Compute(tx.Amount, feePercent)

	now := time.Now().UTC()
	params := transaction.ApproveParams{
		ApprovedBy:   admin.UserID,
		PlatformFee:  fee,
		SellerPayout: payout,
		FeePercent:   feePercent,
		ApprovedAt:   now,
		PaidAt:       now,
	}

	if err := s.settler.Settle(ctx, tx.ID, params, tx.SellerID, payout); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, admin.UserID, adminlog.ActionApprovePayment, map[string]any{
		"transaction_id": tx.ID,
		"amount":         tx.Amount,
		"platform_fee":   fee,
		"seller_payout":  payout,
		"fee_percent":    feePercent,
		"notes":          notes,
	})

	metrics.SettlementsApproved.Inc()

	tx.Status = transaction.StatusPaid
	tx.VerificationStatus = transaction.VerificationApproved
	tx.PlatformFee = fee
	tx.SellerPayout = payout
	tx.FeePercent = feePercent
	tx.ApprovedBy = &admin.UserID
	tx.ApprovedAt = &now
	tx.PaidAt = &now

	return tx, nil
}

// Reject sends a processing transaction back to pending so the buyer can
// resubmit corrected evidence. The submitted code is released for reuse by
// the storage layer's active-code constraint.
func (s *Service) Reject(ctx context.Context, admin *auth.Identity, transactionID, reason string) (*transaction.Transaction, error) {
	if err := auth.RequireAdmin(admin); err != nil {
		return nil, err
	}

	tx, err := s.txRepo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = defaultRejectReason
	}

	now := time.Now().UTC()

	if err := s.txRepo.MarkRejected(ctx, tx.ID, transaction.RejectParams{
		Reason:     reason,
		RejectedAt: now,
	}); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, admin.UserID, adminlog.ActionRejectPayment, map[string]any{
		"transaction_id": tx.ID,
		"amount":         tx.Amount,
		"reason":         reason,
	})

	metrics.SettlementsRejected.Inc()

	tx.Status = transaction.StatusPending
	tx.VerificationStatus = transaction.VerificationRejected
	tx.RejectionReason = reason
	tx.AdminRejectionReason = reason
	tx.RejectedAt = &now

	return tx, nil
}

// appendAudit records the decision; the settlement itself is already
// committed, so an audit failure is logged rather than propagated.
func (s *Service) appendAudit(ctx context.Context, adminID uuid.UUID, action string, details map[string]any) {
	raw, _ := json.Marshal(details)

	entry := &adminlog.Entry{
		AdminID: adminID,
		Action:  action,
		Details: raw,
	}

	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append admin audit entry", "action", action, "error", err)
	}
}
