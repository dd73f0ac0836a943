package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BackMsg returns control to the menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

var (
	screenStyle = lipgloss.NewStyle().Padding(2)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// screen wraps view content in the standard padding every view uses.
func screen(content string) string {
	return screenStyle.Render(content)
}
