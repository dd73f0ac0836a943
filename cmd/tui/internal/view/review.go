package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokopay/sokopay/internal/auth"
	"github.com/sokopay/sokopay/internal/fraud"
	"github.com/sokopay/sokopay/internal/settlement"
	"github.com/sokopay/sokopay/internal/transaction"
	"github.com/sokopay/sokopay/internal/validation"
)

type reviewState int

const (
	reviewStateBrowse reviewState = iota
	reviewStateDecide
)

// ReviewModel walks the moderation queue: every transaction awaiting
// adjudication, one at a time, with its validation trail and fraud alerts.
type ReviewModel struct {
	txService     *transaction.Service
	validationSvc *validation.Service
	settlementSvc *settlement.Service
	alerts        fraud.AlertRepository
	identity      *auth.Identity

	state reviewState

	queue      []*transaction.Transaction
	current    *transaction.Transaction
	detail     string
	totalCount int

	form       *huh.Form
	decision   string // "approve" or "reject"
	formNotes  string
	formReason string

	status  string
	loading bool
}

func NewReviewModel(
	txSvc *transaction.Service,
	validationSvc *validation.Service,
	settlementSvc *settlement.Service,
	alerts fraud.AlertRepository,
	identity *auth.Identity,
) ReviewModel {
	return ReviewModel{
		txService:     txSvc,
		validationSvc: validationSvc,
		settlementSvc: settlementSvc,
		alerts:        alerts,
		identity:      identity,
		status:        "Loading queue...",
		loading:       true,
	}
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadQueueCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadQueueMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading queue: %v", msg.err)
			break
		}

		m.queue = msg.txs
		m.totalCount = len(m.queue)

		if m.totalCount == 0 {
			m.status = "No payments awaiting review."
			break
		}

		return m.nextTx()

	case detailMsg:
		if msg.err != nil {
			m.detail = fmt.Sprintf("(failed to load details: %v)", msg.err)
			break
		}

		m.detail = msg.summary

	case decisionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error applying decision: %v", msg.err)
			m.state = reviewStateBrowse
			m.form = nil

			break
		}

		m.state = reviewStateBrowse
		m.form = nil

		return m.nextTx()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		if m.state == reviewStateBrowse {
			switch msg.String() {
			case "esc", "q":
				return m, Back
			case "r":
				m.loading = true
				m.status = "Reloading queue..."

				return m, m.loadQueueCmd()
			case "a":
				if m.current != nil {
					return m.enterDecision("approve")
				}
			case "x":
				if m.current != nil {
					return m.enterDecision("reject")
				}
			case "s":
				if m.current != nil {
					return m.nextTx()
				}
			}
		}

		if m.state == reviewStateDecide && msg.Type == tea.KeyEsc {
			m.state = reviewStateBrowse
			m.form = nil

			return m, nil
		}
	}

	if m.state == reviewStateDecide && m.form != nil {
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		return m, m.decideCmd()
	}

	return m, nil
}

func (m ReviewModel) enterDecision(decision string) (tea.Model, tea.Cmd) {
	m.decision = decision
	m.formNotes = ""
	m.formReason = ""

	var field *huh.Input
	if decision == "approve" {
		field = huh.NewInput().
			Key("notes").
			Title("Approval notes (optional)").
			Value(&m.formNotes)
	} else {
		field = huh.NewInput().
			Key("reason").
			Title("Rejection reason").
			Placeholder("Payment verification failed").
			Value(&m.formReason)
	}

	m.form = huh.NewForm(huh.NewGroup(field)).WithWidth(50).WithShowHelp(false)
	m.state = reviewStateDecide

	return m, m.form.Init()
}

func (m ReviewModel) View() string {
	if m.loading {
		return screen(m.status)
	}

	if m.current == nil {
		return screen(m.status + "\n\n(r to reload, Esc to back)")
	}

	tx := m.current

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", m.status)
	fmt.Fprintf(&b, "Transaction: %s\n", tx.ID)
	fmt.Fprintf(&b, "Item:        %s\n", tx.ItemName)
	fmt.Fprintf(&b, "Amount:      %s\n", FormatAmount(tx.Amount, tx.Currency))
	fmt.Fprintf(&b, "Buyer:       %s (%s)\n", tx.BuyerName, tx.BuyerPhone)
	fmt.Fprintf(&b, "Code:        %s\n", tx.TransactionCode)
	fmt.Fprintf(&b, "Attempts:    %d\n", tx.SubmissionAttempts)
	fmt.Fprintf(&b, "Verification: %s\n", tx.VerificationStatus)

	if m.detail != "" {
		fmt.Fprintf(&b, "\n%s\n", m.detail)
	}

	content := b.String()

	if m.state == reviewStateDecide && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(fmt.Sprintf("%s %s\n\n%s", strings.ToUpper(m.decision[:1])+m.decision[1:], tx.ID, m.form.View()))

		return screen(lipgloss.JoinHorizontal(lipgloss.Top, content, panel))
	}

	content += "\n(a: approve | x: reject | s: skip | r: reload | Esc: back)"

	return screen(content)
}

func (m ReviewModel) nextTx() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		m.current = nil
		m.detail = ""
		m.status = "Queue done."

		return m, nil
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.detail = "Loading validation trail..."

	reviewed := m.totalCount - len(m.queue)
	m.status = fmt.Sprintf("Reviewing %d/%d", reviewed, m.totalCount)

	return m, m.loadDetailCmd(m.current.ID)
}

type loadQueueMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ReviewModel) loadQueueCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		status := transaction.StatusProcessing
		txs, err := m.txService.List(ctx, transaction.ListFilter{Status: &status})

		return loadQueueMsg{txs: txs, err: err}
	}
}

type detailMsg struct {
	summary string
	err     error
}

func (m ReviewModel) loadDetailCmd(txID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		records, err := m.validationSvc.ListByTransaction(ctx, txID)
		if err != nil {
			return detailMsg{err: err}
		}

		alerts, err := m.alerts.ListByTransaction(ctx, txID)
		if err != nil {
			return detailMsg{err: err}
		}

		var b strings.Builder
		b.WriteString("Checks:\n")

		for _, r := range records {
			fmt.Fprintf(&b, "  %-16s %s\n", r.CheckType, r.Outcome)
		}

		if len(records) == 0 {
			b.WriteString("  (none)\n")
		}

		if len(alerts) > 0 {
			b.WriteString("Alerts:\n")
			for _, a := range alerts {
				fmt.Fprintf(&b, "  [%s] %s\n", a.Severity, a.AlertType)
			}
		}

		return detailMsg{summary: strings.TrimRight(b.String(), "\n")}
	}
}

type decisionMsg struct {
	err error
}

func (m ReviewModel) decideCmd() tea.Cmd {
	tx := m.current
	decision := m.decision
	notes := m.formNotes
	reason := m.formReason

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var err error
		if decision == "approve" {
			_, err = m.settlementSvc.Approve(ctx, m.identity, tx.ID, notes)
		} else {
			_, err = m.settlementSvc.Reject(ctx, m.identity, tx.ID, reason)
		}

		return decisionMsg{err: err}
	}
}
