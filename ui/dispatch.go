package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"pms/backend"
)

func banner(label string, width int, code string) string {
	text := fmt.Sprintf("──══▶ %s ◀══──", label)
	left := max(0, (width-runewidth.StringWidth(text))/2)
	text = pad(blank(left)+text, width)
	return sgr(code, hl(fg(text, 15), 1))
}

// PrintPlan shows what is about to be removed and installed, each section
// under a banner and followed by the affected table rows.
func PrintPlan(w io.Writer, plan backend.Plan, t Table, p Palette, width int) error {
	var b strings.Builder
	section := func(label string, code string, rows []int) {
		if len(rows) == 0 {
			return
		}
		b.WriteString(banner(label, width, code))
		b.WriteByte('\n')
		for _, i := range rows {
			if i < len(t.Groups) {
				b.WriteString(strings.Join(t.Groups[i], "\n"))
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}
	section("REMOVE", p.Selected[1], plan.Remove)
	section("INSTALL", p.Selected[0], plan.Install)
	_, err := io.WriteString(w, b.String())
	return err
}
