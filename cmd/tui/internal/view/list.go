package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokopay/sokopay/internal/transaction"
)

// ListModel shows the full transaction ledger with status filter cycling.
type ListModel struct {
	txService *transaction.Service

	table table.Model
	txs   []*transaction.Transaction

	statusFilterIdx int
	filter          transaction.ListFilter

	loading bool
	err     error
}

func NewListModel(txSvc *transaction.Service) ListModel {
	columns := []table.Column{
		{Title: "Created", Width: 17},
		{Title: "Transaction", Width: 24},
		{Title: "Item", Width: 24},
		{Title: "Amount", Width: 14},
		{Title: "Status", Width: 11},
		{Title: "Verification", Width: 17},
		{Title: "Buyer", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		txService: txSvc,
		table:     t,
		loading:   true,
	}
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % 5
			m.applyFilter()
			m.loading = true

			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) View() string {
	if m.loading {
		return screen("Loading transactions...")
	}

	if m.err != nil {
		return screen(fmt.Sprintf("Error: %v", m.err))
	}

	statusLabels := []string{"All", "Pending", "Processing", "Paid", "Flagged"}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | r: refresh | Esc: back",
		accentStyle.Render(statusLabels[m.statusFilterIdx]),
	)

	tableView := borderStyle.Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableView,
		),
	)
}

func (m *ListModel) applyFilter() {
	m.filter = transaction.ListFilter{}

	switch m.statusFilterIdx {
	case 1:
		status := transaction.StatusPending
		m.filter.Status = &status
	case 2:
		status := transaction.StatusProcessing
		m.filter.Status = &status
	case 3:
		status := transaction.StatusPaid
		m.filter.Status = &status
	case 4:
		vs := transaction.VerificationFlagged
		m.filter.VerificationStatus = &vs
	}
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.CreatedAt),
			tx.ID,
			tx.ItemName,
			FormatAmount(tx.Amount, tx.Currency),
			string(tx.Status),
			string(tx.VerificationStatus),
			tx.BuyerName,
		})
	}

	m.table.SetRows(rows)
}

type loadListMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, m.filter)

		return loadListMsg{txs: txs, err: err}
	}
}
