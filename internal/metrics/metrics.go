// Package metrics holds the Prometheus instruments shared across the
// payment core. Registration happens at import time via promauto.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sokopay_checkouts_created_total",
		Help: "Transactions created through storefront checkout.",
	})

	PaymentSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sokopay_payment_submissions_total",
		Help: "Buyer payment submissions by resulting verification status.",
	}, []string{"verification_status"})

	SettlementsApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sokopay_settlements_approved_total",
		Help: "Payments approved and credited to seller wallets.",
	})

	SettlementsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sokopay_settlements_rejected_total",
		Help: "Payments rejected back to pending.",
	})

	FraudAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sokopay_fraud_alerts_total",
		Help: "Fraud alerts raised, by alert type.",
	}, []string{"alert_type"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sokopay_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// HTTPMiddleware records request latency and status for every route.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		httpDuration.WithLabelValues(r.Method, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
