package cmd

import "github.com/charmbracelet/lipgloss"

// Output styles. lipgloss drops colors when the output is not a terminal.
var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	typeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)
