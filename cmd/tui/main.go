package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/sokopay/sokopay/cmd/tui/internal/view"
	adminlogStore "github.com/sokopay/sokopay/internal/adminlog/store"
	"github.com/sokopay/sokopay/internal/auth"
	authStore "github.com/sokopay/sokopay/internal/auth/store"
	"github.com/sokopay/sokopay/internal/config"
	"github.com/sokopay/sokopay/internal/database"
	"github.com/sokopay/sokopay/internal/fraud"
	fraudStore "github.com/sokopay/sokopay/internal/fraud/store"
	"github.com/sokopay/sokopay/internal/settlement"
	settlementStore "github.com/sokopay/sokopay/internal/settlement/store"
	"github.com/sokopay/sokopay/internal/transaction"
	txStore "github.com/sokopay/sokopay/internal/transaction/store"
	"github.com/sokopay/sokopay/internal/validation"
	validationStore "github.com/sokopay/sokopay/internal/validation/store"
)

type model struct {
	txService     *transaction.Service
	validationSvc *validation.Service
	settlementSvc *settlement.Service
	alerts        fraud.AlertRepository
	identity      *auth.Identity

	currentView View

	reviewView view.ReviewModel
	listView   view.ListModel
}

type View int

const (
	ViewMenu   View = 0
	ViewReview View = 1
	ViewList   View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// The operator authenticates with ADMIN_TOKEN, the same credential the
	// API accepts. The role still comes from the database.
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, authStore.New(db))

	identity, err := verifier.Verify(context.Background(), cfg.Auth.AdminToken)
	if err != nil {
		slog.Error("invalid ADMIN_TOKEN", "error", err)
		os.Exit(1)
	}

	if !identity.IsAdmin() {
		slog.Error("ADMIN_TOKEN does not belong to an admin")
		os.Exit(1)
	}

	logger := slog.Default()

	var (
		txRepo     = txStore.New(db)
		alertRepo  = fraudStore.New(db)
		recordRepo = validationStore.New(db)
	)

	txSvc := transaction.NewService(txRepo)
	validationSvc := validation.NewService(txRepo, recordRepo, fraud.NewDetector(alertRepo))
	settlementSvc := settlement.NewService(txRepo, settlementStore.New(db), adminlogStore.New(db), cfg, logger)

	return model{
		txService:     txSvc,
		validationSvc: validationSvc,
		settlementSvc: settlementSvc,
		alerts:        alertRepo,
		identity:      identity,
		currentView:   ViewMenu,
		reviewView:    view.NewReviewModel(txSvc, validationSvc, settlementSvc, alertRepo, identity),
		listView:      view.NewListModel(txSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.txService, m.validationSvc, m.settlementSvc, m.alerts, m.identity)

				return m, m.reviewView.Init()
			case "2":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService)

				return m, m.listView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"SokoPay Moderation\n\n" +
				"1. Review Payment Queue\n" +
				"2. List Transactions\n\n" +
				"q. Quit",
		)
	case ViewReview:
		return m.reviewView.View()
	case ViewList:
		return m.listView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
