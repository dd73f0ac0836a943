package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sokopay/sokopay/internal/adminlog"
	"github.com/sokopay/sokopay/internal/auth"
	"github.com/sokopay/sokopay/internal/fees"
	"github.com/sokopay/sokopay/internal/transaction"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func adminIdentity() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
}

// staticFee stands in for the environment-backed platform configuration.
type staticFee float64

func (f staticFee) PlatformFeePercent() float64 { return float64(f) }

func processingTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		ID:                 "ORD-TEST-00000001",
		SellerID:           uuid.New(),
		Amount:             100_000,
		Currency:           "KES",
		FeePercent:         5,
		Status:             transaction.StatusProcessing,
		VerificationStatus: transaction.VerificationPendingApproval,
		TransactionCode:    "QGH7RT2MLP",
	}
}

func TestApprove_CreditsSellerWallet(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	settler := NewMockSettler(ctrl)
	audit := adminlog.NewMockRepository(ctrl)

	admin := adminIdentity()
	tx := processingTransaction()

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)

	settler.EXPECT().Settle(gomock.Any(), tx.ID, gomock.Any(), tx.SellerID, int64(95_000)).DoAndReturn(
		func(_ context.Context, _ string, params transaction.ApproveParams, _ uuid.UUID, _ int64) error {
			assert.Equal(t, admin.UserID, params.ApprovedBy)
			assert.Equal(t, int64(5_000), params.PlatformFee)
			assert.Equal(t, int64(95_000), params.SellerPayout)
			assert.Equal(t, 5.0, params.FeePercent)
			assert.False(t, params.PaidAt.IsZero())
			return nil
		})

	audit.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *adminlog.Entry) error {
			assert.Equal(t, adminlog.ActionApprovePayment, entry.Action)
			assert.Equal(t, admin.UserID, entry.AdminID)

			var details map[string]any
			require.NoError(t, json.Unmarshal(entry.Details, &details))
			assert.Equal(t, tx.ID, details["transaction_id"])
			assert.Equal(t, float64(5_000), details["platform_fee"])
			return nil
		})

	svc := NewService(txRepo, settler, audit, staticFee(5), testLogger())

	updated, err := svc.Approve(context.Background(), admin, tx.ID, "receipt checked")
	require.NoError(t, err)

	assert.Equal(t, transaction.StatusPaid, updated.Status)
	assert.Equal(t, transaction.VerificationApproved, updated.VerificationStatus)
	assert.Equal(t, int64(5_000), updated.PlatformFee)
	assert.Equal(t, int64(95_000), updated.SellerPayout)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, admin.UserID, *updated.ApprovedBy)
	assert.NotNil(t, updated.PaidAt)
}

func TestApprove_AppliesCurrentFeePercent(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	settler := NewMockSettler(ctrl)
	audit := adminlog.NewMockRepository(ctrl)

	// Snapshotted at 5% at checkout; the configured rate has since moved.
	tx := processingTransaction()
	require.Equal(t, 5.0, tx.FeePercent)

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)

	settler.EXPECT().Settle(gomock.Any(), tx.ID, gomock.Any(), tx.SellerID, int64(90_000)).DoAndReturn(
		func(_ context.Context, _ string, params transaction.ApproveParams, _ uuid.UUID, _ int64) error {
			assert.Equal(t, int64(10_000), params.PlatformFee)
			assert.Equal(t, int64(90_000), params.SellerPayout)
			assert.Equal(t, 10.0, params.FeePercent)
			return nil
		})
	audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	svc := NewService(txRepo, settler, audit, staticFee(10), testLogger())

	updated, err := svc.Approve(context.Background(), adminIdentity(), tx.ID, "")
	require.NoError(t, err)

	assert.Equal(t, int64(10_000), updated.PlatformFee)
	assert.Equal(t, int64(90_000), updated.SellerPayout)
	assert.Equal(t, 10.0, updated.FeePercent)
}

func TestApprove_RequiresAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewService(
		transaction.NewMockRepository(ctrl),
		NewMockSettler(ctrl),
		adminlog.NewMockRepository(ctrl),
		staticFee(5),
		testLogger(),
	)

	_, err := svc.Approve(context.Background(), &auth.Identity{UserID: uuid.New(), Role: auth.RoleSeller}, "ORD-X", "")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.Approve(context.Background(), nil, "ORD-X", "")
	assert.ErrorIs(t, err, auth.ErrMissingToken)
}

func TestApprove_TransactionNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)

	txRepo.EXPECT().GetTransaction(gomock.Any(), "ORD-MISSING").
		Return(nil, transaction.ErrNotFound)

	svc := NewService(txRepo, NewMockSettler(ctrl), adminlog.NewMockRepository(ctrl), staticFee(5), testLogger())

	_, err := svc.Approve(context.Background(), adminIdentity(), "ORD-MISSING", "")
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestApprove_AlreadyAdjudicated(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	settler := NewMockSettler(ctrl)

	tx := processingTransaction()
	tx.Status = transaction.StatusPaid

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	settler.EXPECT().Settle(gomock.Any(), tx.ID, gomock.Any(), tx.SellerID, gomock.Any()).
		Return(transaction.ErrNotAwaitingApproval)

	// No audit expectation: losing the conditional update records nothing.
	svc := NewService(txRepo, settler, adminlog.NewMockRepository(ctrl), staticFee(5), testLogger())

	_, err := svc.Approve(context.Background(), adminIdentity(), tx.ID, "")
	assert.ErrorIs(t, err, transaction.ErrNotAwaitingApproval)
}

func TestApprove_SettleFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	settler := NewMockSettler(ctrl)

	tx := processingTransaction()

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)

	settleErr := errors.New("connection reset")
	settler.EXPECT().Settle(gomock.Any(), tx.ID, gomock.Any(), tx.SellerID, gomock.Any()).Return(settleErr)

	// No audit expectation and no metrics bump: the rolled-back settlement
	// leaves the transaction awaiting approval, so nothing was decided.
	svc := NewService(txRepo, settler, adminlog.NewMockRepository(ctrl), staticFee(5), testLogger())

	_, err := svc.Approve(context.Background(), adminIdentity(), tx.ID, "")
	assert.ErrorIs(t, err, settleErr)
}

func TestApprove_AuditFailureDoesNotFailSettlement(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	settler := NewMockSettler(ctrl)
	audit := adminlog.NewMockRepository(ctrl)

	tx := processingTransaction()

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	settler.EXPECT().Settle(gomock.Any(), tx.ID, gomock.Any(), tx.SellerID, gomock.Any()).Return(nil)
	audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("audit table locked"))

	svc := NewService(txRepo, settler, audit, staticFee(5), testLogger())

	_, err := svc.Approve(context.Background(), adminIdentity(), tx.ID, "")
	assert.NoError(t, err)
}

func TestReject_DefaultsReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	audit := adminlog.NewMockRepository(ctrl)

	tx := processingTransaction()

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	txRepo.EXPECT().MarkRejected(gomock.Any(), tx.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, params transaction.RejectParams) error {
			assert.Equal(t, "Payment verification failed", params.Reason)
			return nil
		})
	audit.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *adminlog.Entry) error {
			assert.Equal(t, adminlog.ActionRejectPayment, entry.Action)
			return nil
		})

	svc := NewService(txRepo, NewMockSettler(ctrl), audit, staticFee(5), testLogger())

	updated, err := svc.Reject(context.Background(), adminIdentity(), tx.ID, "")
	require.NoError(t, err)

	assert.Equal(t, transaction.StatusPending, updated.Status)
	assert.Equal(t, transaction.VerificationRejected, updated.VerificationStatus)
	assert.Equal(t, "Payment verification failed", updated.RejectionReason)
}

func TestReject_CustomReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	audit := adminlog.NewMockRepository(ctrl)

	tx := processingTransaction()

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	txRepo.EXPECT().MarkRejected(gomock.Any(), tx.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, params transaction.RejectParams) error {
			assert.Equal(t, "Code belongs to an unrelated payment", params.Reason)
			return nil
		})
	audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	svc := NewService(txRepo, NewMockSettler(ctrl), audit, staticFee(5), testLogger())

	updated, err := svc.Reject(context.Background(), adminIdentity(), tx.ID, "Code belongs to an unrelated payment")
	require.NoError(t, err)
	assert.Equal(t, "Code belongs to an unrelated payment", updated.AdminRejectionReason)
}

// ledgerRepo serves reads for the concurrency tests; writes go through the
// settler fake.
type ledgerRepo struct {
	mu  sync.Mutex
	txs map[string]*transaction.Transaction
}

func (r *ledgerRepo) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.txs[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	cp := *tx
	return &cp, nil
}

func (r *ledgerRepo) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	panic("not used")
}

func (r *ledgerRepo) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	panic("not used")
}

func (r *ledgerRepo) FindByCode(ctx context.Context, code, excludeID string) ([]transaction.CodeMatch, error) {
	panic("not used")
}

func (r *ledgerRepo) ApplySubmission(ctx context.Context, id string, sub transaction.Submission) error {
	panic("not used")
}

func (r *ledgerRepo) MarkPaid(ctx context.Context, id string, params transaction.ApproveParams) error {
	panic("not used")
}

func (r *ledgerRepo) MarkRejected(ctx context.Context, id string, params transaction.RejectParams) error {
	panic("not used")
}

// contendedSettler settles each transaction at most once, the way the
// conditional update does in Postgres, and counts the credits that commit
// with it.
type contendedSettler struct {
	mu      sync.Mutex
	settled map[string]bool
	credits int
	total   int64
}

func newContendedSettler() *contendedSettler {
	return &contendedSettler{settled: make(map[string]bool)}
}

func (s *contendedSettler) Settle(ctx context.Context, id string, params transaction.ApproveParams, sellerID uuid.UUID, payout int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settled[id] {
		return transaction.ErrNotAwaitingApproval
	}

	s.settled[id] = true
	s.credits++
	s.total += payout

	return nil
}

type discardAudit struct{}

func (discardAudit) Append(ctx context.Context, entry *adminlog.Entry) error { return nil }

func TestApprove_ConcurrentApprovalsCreditOnce(t *testing.T) {
	tx := processingTransaction()

	repo := &ledgerRepo{txs: map[string]*transaction.Transaction{tx.ID: tx}}
	settler := newContendedSettler()
	svc := NewService(repo, settler, discardAudit{}, staticFee(5), testLogger())

	const workers = 8

	var (
		wg        sync.WaitGroup
		successes atomic.Int64
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.Approve(context.Background(), adminIdentity(), tx.ID, "")
			if err == nil {
				successes.Add(1)
				return
			}
			assert.ErrorIs(t, err, transaction.ErrNotAwaitingApproval)
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(1), successes.Load())
	assert.Equal(t, 1, settler.credits)
	assert.Equal(t, int64(95_000), settler.total)
}

func TestApprove_ConcurrentSellerApprovalsSum(t *testing.T) {
	sellerID := uuid.New()

	repo := &ledgerRepo{txs: make(map[string]*transaction.Transaction)}

	const workers = 10

	var want int64

	ids := make([]string, 0, workers)

	for i := range workers {
		tx := processingTransaction()
		tx.ID = fmt.Sprintf("ORD-SUM-%08d", i)
		tx.SellerID = sellerID
		tx.Amount = int64(10_000 * (i + 1))

		_, payout := fees.Compute(tx.Amount, 5)
		want += payout

		repo.txs[tx.ID] = tx
		ids = append(ids, tx.ID)
	}

	settler := newContendedSettler()
	svc := NewService(repo, settler, discardAudit{}, staticFee(5), testLogger())

	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.Approve(context.Background(), adminIdentity(), id, "")
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.Equal(t, workers, settler.credits)
	assert.Equal(t, want, settler.total)
}
