package tui

import "github.com/charmbracelet/lipgloss"

var (
	Primary = lipgloss.Color("#FF6B35")
	Success = lipgloss.Color("#4CAF50")
	Warning = lipgloss.Color("#FFB74D")
	Error   = lipgloss.Color("#F44336")
	Muted   = lipgloss.Color("#90A4AE")
	Border  = lipgloss.Color("#30363D")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	CaseStyle  = lipgloss.NewStyle().Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(Muted)
	PassStyle  = lipgloss.NewStyle().Foreground(Success).Bold(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(Warning)
	FailStyle  = lipgloss.NewStyle().Foreground(Error).Bold(true)
)
