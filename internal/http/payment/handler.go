package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/auth"
	"github.com/sokopay/sokopay/internal/fraud"
	"github.com/sokopay/sokopay/internal/http/respond"
	"github.com/sokopay/sokopay/internal/metrics"
	"github.com/sokopay/sokopay/internal/settlement"
	"github.com/sokopay/sokopay/internal/transaction"
	"github.com/sokopay/sokopay/internal/validation"
	"github.com/sokopay/sokopay/internal/wallet"
)

type Handler struct {
	validationSvc *validation.Service
	settlementSvc *settlement.Service
	txSvc         *transaction.Service
	alerts        fraud.AlertRepository
	wallets       wallet.Repository
}

func NewHandler(validationSvc *validation.Service, settlementSvc *settlement.Service, txSvc *transaction.Service, alerts fraud.AlertRepository, wallets wallet.Repository) *Handler {
	return &Handler{
		validationSvc: validationSvc,
		settlementSvc: settlementSvc,
		txSvc:         txSvc,
		alerts:        alerts,
		wallets:       wallets,
	}
}

// PublicRoutes carries the buyer-facing submission endpoint.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/validate-payment/submit", h.submit)
}

// AdminRoutes requires a verified admin identity on the context.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/validate-payment/approve/{id}", h.approve)
	r.Post("/validate-payment/reject/{id}", h.reject)
	r.Get("/admin/transactions", h.list)
	r.Get("/admin/transactions/{id}", h.get)
}

type submitRequest struct {
	TransactionID   string `json:"transaction_id"`
	TransactionCode string `json:"transaction_code"`
	PayerPhone      string `json:"payer_phone"`
	PayerName       string `json:"payer_name"`
	PaymentMethod   string `json:"payment_method"`
	AmountPaid      *int64 `json:"amount_paid,omitempty"` // minor units
	ScreenshotURL   string `json:"screenshot_url"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.validationSvc.Submit(r.Context(), validation.SubmitParams{
		TransactionID: req.TransactionID,
		Code:          req.TransactionCode,
		PayerPhone:    req.PayerPhone,
		PayerName:     req.PayerName,
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    req.AmountPaid,
		ScreenshotURL: req.ScreenshotURL,
	})
	if err != nil {
		respond.FromError(w, err)
		return
	}

	metrics.PaymentSubmissions.WithLabelValues(string(result.VerificationStatus)).Inc()

	respond.JSON(w, http.StatusOK, toSubmitResponse(result))
}

type approveRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	tx, err := h.settlementSvc.Approve(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTransactionResponse(tx))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	tx, err := h.settlementSvc.Reject(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := transaction.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("verification_status"); s != "" {
		vs := transaction.VerificationStatus(s)
		filter.VerificationStatus = &vs
	}

	if s := r.URL.Query().Get("seller_id"); s != "" {
		sellerID, err := uuid.Parse(s)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid seller id")
			return
		}

		filter.SellerID = &sellerID
	}

	txs, err := h.txSvc.List(r.Context(), filter)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := h.txSvc.Get(r.Context(), id)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	records, err := h.validationSvc.ListByTransaction(r.Context(), id)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	alerts, err := h.alerts.ListByTransaction(r.Context(), id)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	// The seller may not have a wallet row until their first settlement.
	var sellerWallet *walletResponse

	bal, err := h.wallets.Get(r.Context(), tx.SellerID)
	switch {
	case err == nil:
		sellerWallet = &walletResponse{
			PendingBalance:   bal.PendingBalance,
			AvailableBalance: bal.AvailableBalance,
		}
	case errors.Is(err, wallet.ErrNotFound):
	default:
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, transactionDetailResponse{
		Transaction:  toTransactionResponse(tx),
		Validations:  toValidationResponses(records),
		Alerts:       toAlertResponses(alerts),
		SellerWallet: sellerWallet,
	})
}
