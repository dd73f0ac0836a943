package payment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sokopay/sokopay/internal/fraud"
	"github.com/sokopay/sokopay/internal/transaction"
	"github.com/sokopay/sokopay/internal/validation"
)

type transactionResponse struct {
	ID                 string          `json:"id"`
	SellerID           uuid.UUID       `json:"seller_id"`
	ItemName           string          `json:"item_name"`
	Amount             int64           `json:"amount"`
	Currency           string          `json:"currency"`
	BuyerName          string          `json:"buyer_name"`
	BuyerPhone         string          `json:"buyer_phone"`
	PaymentMethod      string          `json:"payment_method"`
	PlatformFee        int64           `json:"platform_fee"`
	SellerPayout       int64           `json:"seller_payout"`
	Status             string          `json:"status"`
	VerificationStatus string          `json:"verification_status,omitempty"`
	TransactionCode    string          `json:"transaction_code,omitempty"`
	SubmissionAttempts int             `json:"submission_attempts"`
	RejectionReason    string          `json:"rejection_reason,omitempty"`
	VerificationInfo   json.RawMessage `json:"verification_details,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	RejectedAt         *time.Time      `json:"rejected_at,omitempty"`
}

type validationResponse struct {
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type alertResponse struct {
	Type      string          `json:"type"`
	Severity  string          `json:"severity"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type walletResponse struct {
	PendingBalance   int64 `json:"pending_balance"`
	AvailableBalance int64 `json:"available_balance"`
}

type transactionDetailResponse struct {
	Transaction  transactionResponse  `json:"transaction"`
	Validations  []validationResponse `json:"validations"`
	Alerts       []alertResponse      `json:"alerts"`
	SellerWallet *walletResponse      `json:"seller_wallet,omitempty"`
}

type submitResponse struct {
	TransactionID      string               `json:"transaction_id"`
	VerificationStatus string               `json:"verification_status"`
	Message            string               `json:"message"`
	Validations        []validationResponse `json:"validations"`
}

func toTransactionResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:                 tx.ID,
		SellerID:           tx.SellerID,
		ItemName:           tx.ItemName,
		Amount:             tx.Amount,
		Currency:           tx.Currency,
		BuyerName:          tx.BuyerName,
		BuyerPhone:         tx.BuyerPhone,
		PaymentMethod:      tx.PaymentMethod,
		PlatformFee:        tx.PlatformFee,
		SellerPayout:       tx.SellerPayout,
		Status:             string(tx.Status),
		VerificationStatus: string(tx.VerificationStatus),
		TransactionCode:    tx.TransactionCode,
		SubmissionAttempts: tx.SubmissionAttempts,
		RejectionReason:    tx.AdminRejectionReason,
		VerificationInfo:   tx.VerificationDetails,
		CreatedAt:          tx.CreatedAt,
		PaidAt:             tx.PaidAt,
		RejectedAt:         tx.RejectedAt,
	}
}

func toTransactionResponses(txs []*transaction.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}

	return out
}

func toValidationResponses(records []*validation.Record) []validationResponse {
	out := make([]validationResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, validationResponse{
			Type:      string(rec.CheckType),
			Status:    string(rec.Outcome),
			Details:   rec.Details,
			CreatedAt: rec.CreatedAt,
		})
	}

	return out
}

func toAlertResponses(alerts []*fraud.Alert) []alertResponse {
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertResponse{
			Type:      a.AlertType,
			Severity:  string(a.Severity),
			Details:   a.Details,
			CreatedAt: a.CreatedAt,
		})
	}

	return out
}

func toSubmitResponse(result *validation.Result) submitResponse {
	return submitResponse{
		TransactionID:      result.TransactionID,
		VerificationStatus: string(result.VerificationStatus),
		Message:            result.Message,
		Validations:        toValidationResponses(result.Records),
	}
}
