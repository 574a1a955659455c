package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// WriteCrashReport stores a markdown report of a panic in the temp dir and
// returns its path. The tail of logFile is attached when readable.
func WriteCrashReport(err any, stackTrace, logFile string) (string, string) {
	debugLog := ""
	if data, readErr := os.ReadFile(logFile); readErr == nil {
		debugLog = tail(string(data), 200)
	}

	markdown := generateIssueMarkdown(err, stackTrace, debugLog)
	reportPath := filepath.Join(os.TempDir(), "pms-crash-report.md")
	if writeErr := os.WriteFile(reportPath, []byte(markdown), 0600); writeErr != nil {
		return "", markdown
	}
	return reportPath, markdown
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n") + "\n"
}

func generateIssueMarkdown(err any, stackTrace, debugLog string) string {
	var md strings.Builder

	md.WriteString("# Crash Report\n\n")
	md.WriteString("## System Information\n\n")
	fmt.Fprintf(&md, "- **Date**: %s\n", time.Now().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&md, "- **Version**: %s\n", Version)
	fmt.Fprintf(&md, "- **Commit**: %s\n", GitCommit)
	fmt.Fprintf(&md, "- **Build Time**: %s\n", BuildTime)
	fmt.Fprintf(&md, "- **OS/Arch**: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&md, "- **Go Version**: %s\n\n", runtime.Version())

	md.WriteString("## Error\n\n```\n")
	fmt.Fprintf(&md, "%v\n", err)
	md.WriteString("```\n\n")

	md.WriteString("## Stack Trace\n\n```\n")
	md.WriteString(stackTrace)
	md.WriteString("```\n\n")

	if debugLog != "" {
		md.WriteString("## Log\n\n")
		md.WriteString("<details>\n<summary>Click to expand</summary>\n\n```\n")
		md.WriteString(debugLog)
		md.WriteString("```\n</details>\n")
	}

	return md.String()
}

type panicScreenModel struct {
	reportPath string
	width      int
	height     int
	quit       key.Binding
}

func NewPanicScreen(reportPath string) tea.Model {
	return panicScreenModel{
		reportPath: reportPath,
		quit:       key.NewBinding(key.WithKeys("ctrl+c", "q", "esc", "enter")),
	}
}

func (m panicScreenModel) Init() tea.Cmd {
	return nil
}

func (m panicScreenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if key.Matches(msg, m.quit) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m panicScreenModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).MarginBottom(1)
	pathStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	var content strings.Builder
	content.WriteString(titleStyle.Render("pms crashed"))
	content.WriteString("\n\n")
	if m.reportPath != "" {
		content.WriteString(textStyle.Render("Crash report saved to:"))
		content.WriteString("\n")
		content.WriteString(pathStyle.Render(m.reportPath))
	} else {
		content.WriteString(textStyle.Render("The crash report could not be written."))
	}
	content.WriteString("\n\n")
	content.WriteString(textStyle.Render("Press q to quit"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(1, 3).
		Width(min(80, m.width-4)).
		Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
