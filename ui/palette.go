package ui

import (
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"pms/config"
)

// Palette holds the terminal codes used by the table and the browser.
// Color numbers are 256-color indices, a negative number disables the
// color. String fields are raw SGR parameter lists.
type Palette struct {
	Header      string
	Zebra       [2]int
	DB          int
	Foreign     int
	Groups      int
	Name        int
	Version     int
	Installed   int
	NewVersion  int
	Description int
	InfoKey     int
	Highlight   int
	Cursor      string
	Scrollbar   string
	// Selected is indexed by installed state: 0 install, 1 remove.
	Selected [2]string
}

func NewPalette(c config.Colors, profile termenv.Profile) Palette {
	if profile == termenv.Ascii {
		return PlainPalette()
	}
	p := Palette{
		Header:      c.Header,
		Zebra:       c.Zebra,
		DB:          c.DB,
		Foreign:     c.Foreign,
		Groups:      c.Groups,
		Name:        c.Name,
		Version:     c.Version,
		Installed:   c.Installed,
		NewVersion:  c.NewVersion,
		Description: c.Description,
		InfoKey:     c.InfoKey,
		Highlight:   c.Highlight,
		Cursor:      c.Cursor,
		Scrollbar:   c.Scrollbar,
		Selected:    c.Selected,
	}
	if profile == termenv.TrueColor || profile == termenv.ANSI256 {
		p.Selected = c.Selected256
	}
	return p
}

// PlainPalette renders without colors. Cursor and selection fall back to
// reverse video, bold and strike-through.
func PlainPalette() Palette {
	return Palette{
		Zebra:       [2]int{-1, -1},
		DB:          -1,
		Foreign:     -1,
		Groups:      -1,
		Name:        -1,
		Version:     -1,
		Installed:   -1,
		NewVersion:  -1,
		Description: -1,
		InfoKey:     -1,
		Cursor:      "7",
		Scrollbar:   "7",
		Selected:    [2]string{"1", "1;9"},
	}
}

func csi(code string) string {
	return termenv.CSI + code + "m"
}

const reset = termenv.CSI + "m"

// sgr wraps s in the given SGR code followed by a full reset.
func sgr(code, s string) string {
	if code == "" {
		return s
	}
	return csi(code) + s + reset
}

func fg(s string, color int) string {
	if color < 0 {
		return s
	}
	return csi(termenv.ANSI256Color(color).Sequence(false)) + s + csi("39")
}

func bg(s string, color int) string {
	if color < 0 {
		return s
	}
	return csi(termenv.ANSI256Color(color).Sequence(true)) + s + csi("49")
}

// hl applies a single text attribute and switches only that one off.
func hl(s string, attr int) string {
	if attr <= 0 {
		return s
	}
	off := "2" + strconv.Itoa(attr)
	if attr == 1 {
		off = "22"
	}
	return csi(strconv.Itoa(attr)) + s + csi(off)
}

func (p Palette) zebra(n int) int {
	return p.Zebra[n%2]
}

func (p Palette) zebraCode(n int) string {
	c := p.zebra(n)
	if c < 0 {
		return ""
	}
	return termenv.ANSI256Color(c).Sequence(true)
}

func (p Palette) nameColor(installed bool) int {
	if installed {
		return p.Installed
	}
	return p.Name
}

func (p Palette) versionColor(installed bool) int {
	if installed {
		return p.Installed
	}
	return p.Version
}

func (p Palette) dbColor(foreign bool) int {
	if foreign {
		return p.Foreign
	}
	return p.DB
}

// linePrefix builds the escape prefix of a browser line.
func (p Palette) linePrefix(n int, selected, installed, cursor bool) string {
	var b strings.Builder
	if z := p.zebraCode(n); z != "" {
		b.WriteString(csi(z))
	}
	if selected {
		idx := 0
		if installed {
			idx = 1
		}
		if p.Selected[idx] != "" {
			b.WriteString(csi(p.Selected[idx]))
		}
	}
	if cursor && p.Cursor != "" {
		b.WriteString(csi(p.Cursor))
	}
	return b.String()
}
