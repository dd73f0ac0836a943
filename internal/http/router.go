package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sokopay/sokopay/internal/auth"
	"github.com/sokopay/sokopay/internal/http/payment"
	"github.com/sokopay/sokopay/internal/http/reconcilehttp"
	"github.com/sokopay/sokopay/internal/http/respond"
	"github.com/sokopay/sokopay/internal/http/storefront"
	"github.com/sokopay/sokopay/internal/metrics"
)

func New(
	storefrontV1 *storefront.Handler,
	paymentV1 *payment.Handler,
	reconcileV1 *reconcilehttp.Handler,
	verifier *auth.Verifier,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.HTTPMiddleware)

	// The storefront is embedded in third-party seller pages.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		storefrontV1.Routes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			paymentV1.PublicRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(verifier.Middleware(func(w http.ResponseWriter, err error) {
				respond.FromError(w, err)
			}))

			paymentV1.AdminRoutes(r)
			r.Route("/admin", reconcileV1.Routes)
		})
	})

	return router
}
