package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	busyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tickerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	companyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	gainStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func upsideStyle(up bool) lipgloss.Style {
	if up {
		return gainStyle
	}
	return lossStyle
}
