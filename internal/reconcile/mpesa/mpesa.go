// Package mpesa parses M-PESA organization statement exports.
package mpesa

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sokopay/sokopay/internal/reconcile"
)

const (
	colReceipt   = "Receipt No."
	colCompleted = "Completion Time"
	colDetails   = "Details"
	colPaidIn    = "Paid In"
)

// Completion times appear in both layouts depending on the export tool.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse reads an M-PESA statement CSV. Statements open with summary rows
// before the real header, so the header is found by landmark rather than
// assumed at row zero. Rows without a receipt or with a zero paid-in amount
// (charges, withdrawals) are skipped.
func (p *Parser) Parse(r io.Reader) ([]reconcile.StatementEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement csv: %w", err)
	}

	headerFound := false

	idxReceipt := -1
	idxCompleted := -1
	idxDetails := -1
	idxPaidIn := -1

	var entries []reconcile.StatementEntry

	for _, row := range rows {
		if !headerFound {
			matches := 0

			for i, col := range row {
				switch strings.TrimSpace(col) {
				case colReceipt:
					idxReceipt = i
					matches++
				case colCompleted:
					idxCompleted = i
					matches++
				case colDetails:
					idxDetails = i
					matches++
				case colPaidIn:
					idxPaidIn = i
					matches++
				}
			}

			// Receipt and Paid In are the two columns reconciliation
			// cannot work without.
			if matches >= 2 && idxReceipt != -1 && idxPaidIn != -1 {
				headerFound = true
			}

			continue
		}

		maxIdx := max(idxReceipt, idxCompleted, idxDetails, idxPaidIn)
		if len(row) <= maxIdx {
			continue
		}

		code := strings.ToUpper(strings.TrimSpace(row[idxReceipt]))
		if code == "" {
			continue
		}

		amount, err := parseAmount(row[idxPaidIn])
		if err != nil || amount <= 0 {
			continue
		}

		entry := reconcile.StatementEntry{
			Code:   code,
			Amount: amount,
		}

		if idxDetails != -1 {
			entry.PayerDetail = strings.TrimSpace(row[idxDetails])
		}

		if idxCompleted != -1 {
			entry.CompletedAt = parseTime(row[idxCompleted])
		}

		entries = append(entries, entry)
	}

	if !headerFound {
		return nil, fmt.Errorf("statement header not found")
	}

	return entries, nil
}

// parseAmount handles "1,234.00" style figures and returns minor units.
func parseAmount(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, fmt.Errorf("empty amount")
	}

	val, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, err
	}

	return int64(math.Round(val * 100)), nil
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
