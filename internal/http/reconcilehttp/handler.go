// Package reconcilehttp exposes the statement reconciliation upload.
package reconcilehttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sokopay/sokopay/internal/auth"
	"github.com/sokopay/sokopay/internal/http/respond"
	"github.com/sokopay/sokopay/internal/reconcile"
)

const maxStatementSize = 10 << 20

type Handler struct {
	svc *reconcile.Service
}

func NewHandler(svc *reconcile.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/reconcile", h.reconcile)
}

type matchResponse struct {
	Code          string `json:"code"`
	Amount        int64  `json:"amount"`
	Outcome       string `json:"outcome"`
	TransactionID string `json:"transaction_id,omitempty"`
	Expected      int64  `json:"expected_amount,omitempty"`
}

type absentResponse struct {
	TransactionID string `json:"transaction_id"`
	Code          string `json:"code"`
	Amount        int64  `json:"amount"`
}

type reportResponse struct {
	Provider   string           `json:"provider"`
	Entries    int              `json:"entries"`
	Matched    int              `json:"matched"`
	Mismatched int              `json:"mismatched"`
	Unknown    int              `json:"unknown"`
	Matches    []matchResponse  `json:"matches"`
	Absent     []absentResponse `json:"absent"`
	RanAt      time.Time        `json:"ran_at"`
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxStatementSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	provider := reconcile.Provider(r.FormValue("provider"))
	if provider == "" {
		respond.Error(w, http.StatusBadRequest, "provider field is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	report, err := h.svc.Run(r.Context(), auth.FromContext(r.Context()), provider, file)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toReportResponse(report))
}

func toReportResponse(report *reconcile.Report) reportResponse {
	matches := make([]matchResponse, 0, len(report.Matches))
	for _, m := range report.Matches {
		matches = append(matches, matchResponse{
			Code:          m.Entry.Code,
			Amount:        m.Entry.Amount,
			Outcome:       string(m.Outcome),
			TransactionID: m.TransactionID,
			Expected:      m.Expected,
		})
	}

	absent := make([]absentResponse, 0, len(report.Absent))
	for _, a := range report.Absent {
		absent = append(absent, absentResponse{
			TransactionID: a.TransactionID,
			Code:          a.Code,
			Amount:        a.Amount,
		})
	}

	return reportResponse{
		Provider:   string(report.Provider),
		Entries:    report.Entries,
		Matched:    report.Matched,
		Mismatched: report.Mismatched,
		Unknown:    report.Unknown,
		Matches:    matches,
		Absent:     absent,
		RanAt:      report.RanAt,
	}
}
