package validation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sokopay/sokopay/internal/fraud"
	"github.com/sokopay/sokopay/internal/transaction"
)

func newPendingTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		ID:                 "ORD-TEST-00000001",
		Amount:             250_000,
		Currency:           "KES",
		BuyerName:          "Achieng Otieno",
		BuyerPhone:         "+254712345678",
		PaymentMethod:      "MPESA",
		Status:             transaction.StatusPending,
		SubmissionAttempts: 0,
	}
}

func TestSubmit_AllChecksPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	records := NewMockRepository(ctrl)
	detector := NewMockDetector(ctrl)

	tx := newPendingTransaction()
	amount := int64(250_000)

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	txRepo.EXPECT().FindByCode(gomock.Any(), "QGH7RT2MLP", tx.ID).Return(nil, nil)

	records.EXPECT().AppendRecords(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, recs []*Record) error {
			require.Len(t, recs, 3)
			assert.Equal(t, CheckFormat, recs[0].CheckType)
			assert.Equal(t, CheckDuplicate, recs[1].CheckType)
			assert.Equal(t, CheckAmount, recs[2].CheckType)
			for _, r := range recs {
				assert.True(t, r.Passed(), "check %s should pass", r.CheckType)
			}
			return nil
		})

	detector.EXPECT().Inspect(gomock.Any(), fraud.Input{
		TransactionID: tx.ID,
		Code:          "QGH7RT2MLP",
		DuplicateIDs:  []string{},
		Attempts:      1,
	}).Return(nil, nil)

	txRepo.EXPECT().ApplySubmission(gomock.Any(), tx.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, sub transaction.Submission) error {
			assert.Equal(t, "QGH7RT2MLP", sub.Code)
			assert.Equal(t, transaction.VerificationPendingApproval, sub.VerificationStatus)
			assert.Equal(t, "MPESA", sub.PaymentMethod)
			assert.Equal(t, tx.BuyerPhone, sub.BuyerPhone)
			assert.NotEmpty(t, sub.VerificationDetails)
			return nil
		})

	svc := NewService(txRepo, records, detector)

	// Lowercase with padding exercises normalization.
	result, err := svc.Submit(context.Background(), SubmitParams{
		TransactionID: tx.ID,
		Code:          "  qgh7rt2mlp ",
		AmountPaid:    &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, transaction.VerificationPendingApproval, result.VerificationStatus)
	assert.Equal(t, "Payment submitted for admin approval", result.Message)
	assert.Len(t, result.Records, 3)
}

func TestSubmit_BadFormatStillRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	records := NewMockRepository(ctrl)
	detector := NewMockDetector(ctrl)

	tx := newPendingTransaction()

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	txRepo.EXPECT().FindByCode(gomock.Any(), "AB!", tx.ID).Return(nil, nil)

	var appended []*Record
	records.EXPECT().AppendRecords(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, recs []*Record) error {
			appended = recs
			return nil
		})

	detector.EXPECT().Inspect(gomock.Any(), gomock.Any()).Return(nil, nil)
	txRepo.EXPECT().ApplySubmission(gomock.Any(), tx.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, sub transaction.Submission) error {
			assert.Equal(t, transaction.VerificationFlagged, sub.VerificationStatus)
			return nil
		})

	svc := NewService(txRepo, records, detector)

	result, err := svc.Submit(context.Background(), SubmitParams{
		TransactionID: tx.ID,
		Code:          "ab!",
	})
	require.NoError(t, err)

	assert.Equal(t, transaction.VerificationFlagged, result.VerificationStatus)
	assert.Equal(t, "Payment flagged for manual review", result.Message)

	// A failed check still lands in the audit trail.
	require.NotEmpty(t, appended)
	assert.Equal(t, CheckFormat, appended[0].CheckType)
	assert.Equal(t, OutcomeFailed, appended[0].Outcome)
}

func TestSubmit_DuplicateCodeFlags(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	records := NewMockRepository(ctrl)
	detector := NewMockDetector(ctrl)

	tx := newPendingTransaction()

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	txRepo.EXPECT().FindByCode(gomock.Any(), "QGH7RT2MLP", tx.ID).Return(
		[]transaction.CodeMatch{{ID: "ORD-OTHER-11111111"}}, nil)
	records.EXPECT().AppendRecords(gomock.Any(), gomock.Any()).Return(nil)

	detector.EXPECT().Inspect(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in fraud.Input) ([]fraud.Alert, error) {
			assert.Equal(t, []string{"ORD-OTHER-11111111"}, in.DuplicateIDs)
			return []fraud.Alert{{AlertType: fraud.AlertDuplicateCode}}, nil
		})

	txRepo.EXPECT().ApplySubmission(gomock.Any(), tx.ID, gomock.Any()).Return(nil)

	svc := NewService(txRepo, records, detector)

	result, err := svc.Submit(context.Background(), SubmitParams{
		TransactionID: tx.ID,
		Code:          "QGH7RT2MLP",
	})
	require.NoError(t, err)

	assert.Equal(t, transaction.VerificationFlagged, result.VerificationStatus)

	var dup *Record
	for _, r := range result.Records {
		if r.CheckType == CheckDuplicate {
			dup = r
		}
	}
	require.NotNil(t, dup)
	assert.Equal(t, OutcomeFailed, dup.Outcome)

	var details map[string]any
	require.NoError(t, json.Unmarshal(dup.Details, &details))
	assert.Contains(t, details, "duplicate_ids")
}

func TestSubmit_AmountMismatchFlags(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	records := NewMockRepository(ctrl)
	detector := NewMockDetector(ctrl)

	tx := newPendingTransaction()
	paid := int64(200_000) // expected 250_000

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	txRepo.EXPECT().FindByCode(gomock.Any(), gomock.Any(), tx.ID).Return(nil, nil)
	records.EXPECT().AppendRecords(gomock.Any(), gomock.Any()).Return(nil)
	detector.EXPECT().Inspect(gomock.Any(), gomock.Any()).Return(nil, nil)
	txRepo.EXPECT().ApplySubmission(gomock.Any(), tx.ID, gomock.Any()).Return(nil)

	svc := NewService(txRepo, records, detector)

	result, err := svc.Submit(context.Background(), SubmitParams{
		TransactionID: tx.ID,
		Code:          "QGH7RT2MLP",
		AmountPaid:    &paid,
	})
	require.NoError(t, err)

	assert.Equal(t, transaction.VerificationFlagged, result.VerificationStatus)
}

func TestSubmit_AmountWithinTolerancePasses(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	records := NewMockRepository(ctrl)
	detector := NewMockDetector(ctrl)

	tx := newPendingTransaction()
	paid := tx.Amount - 99 // inside the sub-unit tolerance

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	txRepo.EXPECT().FindByCode(gomock.Any(), gomock.Any(), tx.ID).Return(nil, nil)
	records.EXPECT().AppendRecords(gomock.Any(), gomock.Any()).Return(nil)
	detector.EXPECT().Inspect(gomock.Any(), gomock.Any()).Return(nil, nil)
	txRepo.EXPECT().ApplySubmission(gomock.Any(), tx.ID, gomock.Any()).Return(nil)

	svc := NewService(txRepo, records, detector)

	result, err := svc.Submit(context.Background(), SubmitParams{
		TransactionID: tx.ID,
		Code:          "QGH7RT2MLP",
		AmountPaid:    &paid,
	})
	require.NoError(t, err)

	assert.Equal(t, transaction.VerificationPendingApproval, result.VerificationStatus)
}

func TestSubmit_MissingCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewService(
		transaction.NewMockRepository(ctrl),
		NewMockRepository(ctrl),
		NewMockDetector(ctrl),
	)

	_, err := svc.Submit(context.Background(), SubmitParams{TransactionID: "ORD-X", Code: "   "})
	assert.ErrorIs(t, err, ErrMissingCode)

	_, err = svc.Submit(context.Background(), SubmitParams{Code: "QGH7RT2MLP"})
	assert.ErrorIs(t, err, ErrMissingCode)
}

func TestSubmit_TransactionNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)

	txRepo.EXPECT().GetTransaction(gomock.Any(), "ORD-MISSING").
		Return(nil, transaction.ErrNotFound)

	svc := NewService(txRepo, NewMockRepository(ctrl), NewMockDetector(ctrl))

	_, err := svc.Submit(context.Background(), SubmitParams{
		TransactionID: "ORD-MISSING",
		Code:          "QGH7RT2MLP",
	})
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestSubmit_CodeConflictPassedThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	records := NewMockRepository(ctrl)
	detector := NewMockDetector(ctrl)

	tx := newPendingTransaction()

	txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	txRepo.EXPECT().FindByCode(gomock.Any(), gomock.Any(), tx.ID).Return(nil, nil)
	records.EXPECT().AppendRecords(gomock.Any(), gomock.Any()).Return(nil)
	detector.EXPECT().Inspect(gomock.Any(), gomock.Any()).Return(nil, nil)

	// Another submission won the partial-unique-index race.
	txRepo.EXPECT().ApplySubmission(gomock.Any(), tx.ID, gomock.Any()).
		Return(transaction.ErrCodeConflict)

	svc := NewService(txRepo, records, detector)

	_, err := svc.Submit(context.Background(), SubmitParams{
		TransactionID: tx.ID,
		Code:          "QGH7RT2MLP",
	})
	assert.ErrorIs(t, err, transaction.ErrCodeConflict)
}
