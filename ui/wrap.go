package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Wrap greedily breaks s into lines no wider than width display columns.
// Words wider than a line are split hard, keeping at least one rune per
// piece.
func Wrap(s string, width int) []string {
	width = max(1, width)

	var (
		lines   []string
		buf     []string
		bufCols int
	)
	flush := func() {
		lines = append(lines, strings.Join(buf, " "))
		buf, bufCols = nil, 0
	}

	for _, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)
		if len(buf) > 0 && bufCols+len(buf)+w > width {
			flush()
		}
		for w > width {
			head, tail := splitAt(word, width)
			lines = append(lines, head)
			word = tail
			w = runewidth.StringWidth(word)
		}
		if word == "" {
			continue
		}
		buf = append(buf, word)
		bufCols += w
	}
	if len(buf) > 0 {
		flush()
	}
	return lines
}

// splitAt cuts s after at most width columns, but never before the first
// rune.
func splitAt(s string, width int) (string, string) {
	cols := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if cols+rw > width && i > 0 {
			return s[:i], s[i:]
		}
		cols += rw
	}
	return s, ""
}

// pad right-pads s with spaces to width display columns.
func pad(s string, width int) string {
	if n := width - runewidth.StringWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "")
}
