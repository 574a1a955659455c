package ui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
)

// ColorProfile picks the terminal color profile: an explicit override
// wins, then NO_COLOR, then TERM/COLORTERM sniffing, then lipgloss
// auto-detection. The result is also installed for lipgloss.
func ColorProfile(override string, noColor bool) termenv.Profile {
	profile := detectProfile(override, noColor, os.Getenv("TERM"), os.Getenv("COLORTERM"))
	if profile < 0 {
		profile = lipgloss.ColorProfile()
	}
	lipgloss.SetColorProfile(profile)
	zap.S().Debugw("color profile", "profile", profile)
	return profile
}

// detectProfile returns -1 when nothing decides the profile.
func detectProfile(override string, noColor bool, term, colorterm string) termenv.Profile {
	switch strings.ToLower(override) {
	case "truecolor", "24bit":
		return termenv.TrueColor
	case "256", "ansi256":
		return termenv.ANSI256
	case "ansi", "16":
		return termenv.ANSI
	case "ascii", "none":
		return termenv.Ascii
	}

	if noColor {
		return termenv.Ascii
	}

	// Most modern terminals set COLORTERM=truecolor or COLORTERM=24bit
	if colorterm == "truecolor" || colorterm == "24bit" {
		return termenv.TrueColor
	}

	trueColorTerms := []string{
		"xterm-256color", "screen-256color", "tmux-256color",
		"alacritty", "kitty", "wezterm", "iterm", "iterm2",
		"vscode", "konsole", "gnome", "terminator",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(term, t) {
			return termenv.TrueColor
		}
	}

	if term == "xterm" {
		return termenv.ANSI256
	}
	return -1
}

var Program *tea.Program

// ReleaseTerminal restores the terminal after a crash inside the program.
func ReleaseTerminal() {
	if Program != nil {
		_ = Program.ReleaseTerminal()
	}
}

// RunBrowser runs the browser on the alternate screen with mouse support
// and returns its final state.
func RunBrowser(b Browser) (Result, error) {
	Program = tea.NewProgram(b, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithoutCatchPanics())
	final, err := Program.Run()
	if err != nil {
		zap.S().Errorw("failed to run browser", "err", err)
		return Result{}, fmt.Errorf("browser failed: %w", err)
	}
	return final.(Browser).Result(), nil
}
