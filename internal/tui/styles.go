package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle    = lipgloss.NewStyle().Padding(0, 1)
	activeTab   = tabStyle.Bold(true).Underline(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	// refundStyle marks negative amounts so refunds never read like
	// ordinary spending.
	refundStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	spendStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)
