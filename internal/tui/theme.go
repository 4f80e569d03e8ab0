package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorLavender lipgloss.Color = "#b4befe"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPink)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 2)

	nameStyle  = lipgloss.NewStyle().Foreground(colorLavender).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(colorText)

	loadingStyle = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)
	okStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	helpStyle    = lipgloss.NewStyle().Foreground(colorOverlay1)
)
