package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type footerModel struct {
	legend help.Model
	keys   browserKeyMap
}

func newFooter(keys browserKeyMap) footerModel {
	return footerModel{legend: newLegend(), keys: keys}
}

// counters renders "[cursor / total]" and the pending removal and install
// counts, each only when non-zero.
func counters(cursor, total, removals, installs int) string {
	digits := len(strconv.Itoa(total))
	parts := []string{footerStyle.Render(fmt.Sprintf(" [%*d / %d] ", digits, cursor+1, total))}
	if removals > 0 {
		parts = append(parts, removeCountStyle.Render(fmt.Sprintf(" [- %d] ", removals)))
	}
	if installs > 0 {
		parts = append(parts, installCountStyle.Render(fmt.Sprintf(" [+ %d] ", installs)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m footerModel) View(width, cursor, total, removals, installs int) string {
	leftSection := counters(cursor, total, removals, installs)
	rightSection := m.legend.View(m.keys)
	spacer := spaceStyle.Width(max(0, width-lipgloss.Width(leftSection)-lipgloss.Width(rightSection))).Render("")
	return ansi.Truncate(lipgloss.JoinHorizontal(lipgloss.Top, leftSection, spacer, rightSection), width, "")
}
