// Package respond writes the envelope every API response uses: successful
// payloads under "data", failures under "error".
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sokopay/sokopay/internal/auth"
	"github.com/sokopay/sokopay/internal/catalog"
	"github.com/sokopay/sokopay/internal/checkout"
	"github.com/sokopay/sokopay/internal/reconcile"
	"github.com/sokopay/sokopay/internal/transaction"
	"github.com/sokopay/sokopay/internal/validation"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope{Success: false, Error: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// FromError maps domain errors to status codes. Unknown errors become 500
// with a generic message so internals never leak to buyers.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		Error(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrForbidden):
		Error(w, http.StatusForbidden, "admin access required")
	case errors.Is(err, catalog.ErrStoreNotFound):
		Error(w, http.StatusNotFound, "store not found")
	case errors.Is(err, catalog.ErrStoreInactive):
		Error(w, http.StatusNotFound, "store not found")
	case errors.Is(err, catalog.ErrProductNotFound):
		Error(w, http.StatusNotFound, "product not found")
	case errors.Is(err, transaction.ErrNotFound):
		Error(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, transaction.ErrCodeConflict):
		Error(w, http.StatusConflict, "transaction code already in use")
	case errors.Is(err, transaction.ErrNotAwaitingApproval):
		Error(w, http.StatusConflict, "transaction is not awaiting approval")
	case errors.Is(err, checkout.ErrMissingBuyer),
		errors.Is(err, checkout.ErrPriceNotSet),
		errors.Is(err, validation.ErrMissingCode),
		errors.Is(err, reconcile.ErrUnknownProvider):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
