package ui

import "github.com/charmbracelet/lipgloss"

type uiTheme struct {
	header     lipgloss.Style
	panel      lipgloss.Style
	inputPanel lipgloss.Style
	footer     lipgloss.Style
	status     lipgloss.Style
	busy       lipgloss.Style
	helpText   lipgloss.Style
	errorText  lipgloss.Style
	speaker    map[string]lipgloss.Style
}

func newTheme() uiTheme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")

	return uiTheme{
		header: lipgloss.NewStyle().
			Foreground(text).
			Bold(true).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink),
		footer:    lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		status:    lipgloss.NewStyle().Foreground(blue).Bold(true),
		busy:      lipgloss.NewStyle().Foreground(mint).Bold(true),
		helpText:  lipgloss.NewStyle().Foreground(muted),
		errorText: lipgloss.NewStyle().Foreground(pink),
		speaker: map[string]lipgloss.Style{
			speakerYou:       lipgloss.NewStyle().Foreground(mint).Bold(true),
			speakerAssistant: lipgloss.NewStyle().Foreground(blue).Bold(true),
			speakerSystem:    lipgloss.NewStyle().Foreground(muted).Bold(true),
		},
	}
}
