package payment

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sokopay/sokopay/internal/adminlog"
	"github.com/sokopay/sokopay/internal/auth"
	"github.com/sokopay/sokopay/internal/fraud"
	"github.com/sokopay/sokopay/internal/settlement"
	"github.com/sokopay/sokopay/internal/transaction"
	"github.com/sokopay/sokopay/internal/validation"
	"github.com/sokopay/sokopay/internal/wallet"
)

// staticFee stands in for the environment-backed platform configuration.
type staticFee float64

func (f staticFee) PlatformFeePercent() float64 { return float64(f) }

type fixture struct {
	txRepo  *transaction.MockRepository
	records *validation.MockRepository
	det     *validation.MockDetector
	settler *settlement.MockSettler
	wallets *wallet.MockRepository
	audit   *adminlog.MockRepository
	alerts  *fraud.MockAlertRepository
	router  chi.Router
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		txRepo:  transaction.NewMockRepository(ctrl),
		records: validation.NewMockRepository(ctrl),
		det:     validation.NewMockDetector(ctrl),
		settler: settlement.NewMockSettler(ctrl),
		wallets: wallet.NewMockRepository(ctrl),
		audit:   adminlog.NewMockRepository(ctrl),
		alerts:  fraud.NewMockAlertRepository(ctrl),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewHandler(
		validation.NewService(f.txRepo, f.records, f.det),
		settlement.NewService(f.txRepo, f.settler, f.audit, staticFee(5), logger),
		transaction.NewService(f.txRepo),
		f.alerts,
		f.wallets,
	)

	f.router = chi.NewRouter()
	handler.PublicRoutes(f.router)
	handler.AdminRoutes(f.router)

	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSubmit_ReturnsPendingApproval(t *testing.T) {
	f := newFixture(t)

	tx := &transaction.Transaction{ID: "ORD-TEST-1", Amount: 100_000, Status: transaction.StatusPending}

	f.txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	f.txRepo.EXPECT().FindByCode(gomock.Any(), "QGH7RT2MLP", tx.ID).Return(nil, nil)
	f.records.EXPECT().AppendRecords(gomock.Any(), gomock.Any()).Return(nil)
	f.det.EXPECT().Inspect(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.txRepo.EXPECT().ApplySubmission(gomock.Any(), tx.ID, gomock.Any()).Return(nil)

	body, _ := json.Marshal(map[string]any{
		"transaction_id":   tx.ID,
		"transaction_code": "QGH7RT2MLP",
		"payer_phone":      "+254712345678",
	})

	req := httptest.NewRequest(http.MethodPost, "/validate-payment/submit", bytes.NewReader(body))
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var data struct {
		VerificationStatus string `json:"verification_status"`
		Message            string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "pending_approval", data.VerificationStatus)
	assert.Equal(t, "Payment submitted for admin approval", data.Message)
}

func TestSubmit_CodeConflictMapsTo409(t *testing.T) {
	f := newFixture(t)

	tx := &transaction.Transaction{ID: "ORD-TEST-1", Amount: 100_000}

	f.txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	f.txRepo.EXPECT().FindByCode(gomock.Any(), gomock.Any(), tx.ID).Return(nil, nil)
	f.records.EXPECT().AppendRecords(gomock.Any(), gomock.Any()).Return(nil)
	f.det.EXPECT().Inspect(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.txRepo.EXPECT().ApplySubmission(gomock.Any(), tx.ID, gomock.Any()).
		Return(transaction.ErrCodeConflict)

	body, _ := json.Marshal(map[string]any{
		"transaction_id":   tx.ID,
		"transaction_code": "QGH7RT2MLP",
	})

	rec := f.do(httptest.NewRequest(http.MethodPost, "/validate-payment/submit", bytes.NewReader(body)))

	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestSubmit_InvalidBody(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/validate-payment/submit", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_UnknownTransactionMapsTo404(t *testing.T) {
	f := newFixture(t)

	f.txRepo.EXPECT().GetTransaction(gomock.Any(), "ORD-MISSING").
		Return(nil, transaction.ErrNotFound)

	body, _ := json.Marshal(map[string]any{
		"transaction_id":   "ORD-MISSING",
		"transaction_code": "QGH7RT2MLP",
	})

	rec := f.do(httptest.NewRequest(http.MethodPost, "/validate-payment/submit", bytes.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApprove_AsAdmin(t *testing.T) {
	f := newFixture(t)

	admin := &auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
	tx := &transaction.Transaction{
		ID:         "ORD-TEST-1",
		SellerID:   uuid.New(),
		Amount:     100_000,
		FeePercent: 5,
		Status:     transaction.StatusProcessing,
	}

	f.txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	f.settler.EXPECT().Settle(gomock.Any(), tx.ID, gomock.Any(), tx.SellerID, int64(95_000)).Return(nil)
	f.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/validate-payment/approve/"+tx.ID, nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), admin))

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)

	var data struct {
		Status       string `json:"status"`
		SellerPayout int64  `json:"seller_payout"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "paid", data.Status)
	assert.Equal(t, int64(95_000), data.SellerPayout)
}

func TestApprove_WithoutIdentityMapsTo401(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/validate-payment/approve/ORD-TEST-1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApprove_NonAdminMapsTo403(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/validate-payment/approve/ORD-TEST-1", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UserID: uuid.New(), Role: auth.RoleBuyer}))

	rec := f.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReject_DefaultsReason(t *testing.T) {
	f := newFixture(t)

	admin := &auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
	tx := &transaction.Transaction{ID: "ORD-TEST-1", Status: transaction.StatusProcessing}

	f.txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	f.txRepo.EXPECT().MarkRejected(gomock.Any(), tx.ID, gomock.Any()).Return(nil)
	f.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/validate-payment/reject/"+tx.ID, nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), admin))

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)

	var data struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejection_reason"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "pending", data.Status)
	assert.Equal(t, "Payment verification failed", data.RejectionReason)
}

func TestGetTransaction_IncludesSellerWallet(t *testing.T) {
	f := newFixture(t)

	admin := &auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
	tx := &transaction.Transaction{ID: "ORD-TEST-1", SellerID: uuid.New(), Amount: 100_000}

	f.txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	f.records.EXPECT().ListByTransaction(gomock.Any(), tx.ID).Return(nil, nil)
	f.alerts.EXPECT().ListByTransaction(gomock.Any(), tx.ID).Return(nil, nil)
	f.wallets.EXPECT().Get(gomock.Any(), tx.SellerID).
		Return(&wallet.Wallet{UserID: tx.SellerID, PendingBalance: 95_000}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/transactions/"+tx.ID, nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), admin))

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)

	var data struct {
		SellerWallet *struct {
			PendingBalance int64 `json:"pending_balance"`
		} `json:"seller_wallet"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.SellerWallet)
	assert.Equal(t, int64(95_000), data.SellerWallet.PendingBalance)
}

func TestGetTransaction_NoWalletYet(t *testing.T) {
	f := newFixture(t)

	admin := &auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
	tx := &transaction.Transaction{ID: "ORD-TEST-1", SellerID: uuid.New(), Amount: 100_000}

	f.txRepo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	f.records.EXPECT().ListByTransaction(gomock.Any(), tx.ID).Return(nil, nil)
	f.alerts.EXPECT().ListByTransaction(gomock.Any(), tx.ID).Return(nil, nil)
	f.wallets.EXPECT().Get(gomock.Any(), tx.SellerID).Return(nil, wallet.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/admin/transactions/"+tx.ID, nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), admin))

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)

	var data struct {
		SellerWallet json.RawMessage `json:"seller_wallet"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Nil(t, data.SellerWallet)
}

func TestListTransactions_ParsesFilter(t *testing.T) {
	f := newFixture(t)

	admin := &auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}

	f.txRepo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
			require.NotNil(t, filter.Status)
			assert.Equal(t, transaction.StatusProcessing, *filter.Status)
			require.NotNil(t, filter.VerificationStatus)
			assert.Equal(t, transaction.VerificationFlagged, *filter.VerificationStatus)
			return nil, nil
		})

	req := httptest.NewRequest(http.MethodGet, "/admin/transactions?status=processing&verification_status=flagged", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), admin))

	rec := f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
