package view

import (
	"context"
	"fmt"
	"time"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders minor units with the transaction currency.
func FormatAmount(minor int64, currency string) string {
	if currency == "" {
		currency = "KES"
	}

	return fmt.Sprintf("%s %.2f", currency, float64(minor)/100.0)
}

// FormatDate formats a time.Time into YYYY-MM-DD HH:MM.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
