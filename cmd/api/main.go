package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	adminlogStore "github.com/sokopay/sokopay/internal/adminlog/store"
	"github.com/sokopay/sokopay/internal/auth"
	authStore "github.com/sokopay/sokopay/internal/auth/store"
	"github.com/sokopay/sokopay/internal/catalog"
	catalogStore "github.com/sokopay/sokopay/internal/catalog/store"
	"github.com/sokopay/sokopay/internal/checkout"
	"github.com/sokopay/sokopay/internal/config"
	"github.com/sokopay/sokopay/internal/database"
	"github.com/sokopay/sokopay/internal/fraud"
	fraudStore "github.com/sokopay/sokopay/internal/fraud/store"
	sokoHttp "github.com/sokopay/sokopay/internal/http"
	paymentHandler "github.com/sokopay/sokopay/internal/http/payment"
	reconcileHandler "github.com/sokopay/sokopay/internal/http/reconcilehttp"
	storefrontHandler "github.com/sokopay/sokopay/internal/http/storefront"
	"github.com/sokopay/sokopay/internal/reconcile"
	"github.com/sokopay/sokopay/internal/reconcile/mpesa"
	"github.com/sokopay/sokopay/internal/settlement"
	settlementStore "github.com/sokopay/sokopay/internal/settlement/store"
	"github.com/sokopay/sokopay/internal/transaction"
	txStore "github.com/sokopay/sokopay/internal/transaction/store"
	"github.com/sokopay/sokopay/internal/validation"
	validationStore "github.com/sokopay/sokopay/internal/validation/store"
	walletStore "github.com/sokopay/sokopay/internal/wallet/store"
)

func main() {
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		txRepo      = txStore.New(db)
		catalogRepo = catalogStore.New(db)
		walletRepo  = walletStore.New(db)
		alertRepo   = fraudStore.New(db)
		recordRepo  = validationStore.New(db)
		auditRepo   = adminlogStore.New(db)
	)

	var (
		catalogService     = catalog.NewService(catalogRepo)
		checkoutService    = checkout.NewService(catalogRepo, txRepo, cfg)
		detector           = fraud.NewDetector(alertRepo)
		validationService  = validation.NewService(txRepo, recordRepo, detector)
		transactionService = transaction.NewService(txRepo)
		settlementService  = settlement.NewService(txRepo, settlementStore.New(db), auditRepo, cfg, logger)
		reconcileService   = reconcile.NewService(
			map[reconcile.Provider]reconcile.Parser{reconcile.ProviderMPESA: mpesa.New()},
			txRepo, alertRepo, auditRepo, logger,
		)
	)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, authStore.New(db))

	var (
		storefrontH = storefrontHandler.NewHandler(catalogService, checkoutService)
		paymentH    = paymentHandler.NewHandler(validationService, settlementService, transactionService, alertRepo, walletRepo)
		reconcileH  = reconcileHandler.NewHandler(reconcileService)
	)

	router := sokoHttp.New(storefrontH, paymentH, reconcileH, verifier)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
