package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	footerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("18"))

	removeCountStyle = footerStyle.
				Foreground(lipgloss.Color("196"))

	installCountStyle = footerStyle.
				Foreground(lipgloss.Color("118"))

	overlayFrameStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("33")).
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	spaceStyle = lipgloss.NewStyle()
)

// ErrorText renders a message the way errors are shown on screen.
func ErrorText(s string) string {
	return errorStyle.Render(s)
}
