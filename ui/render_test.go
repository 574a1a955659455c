package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pms/backend"
	"pms/config"
)

func TestHighlightAttributes(t *testing.T) {
	assert.Equal(t, "\x1b[4mx\x1b[24m", hl("x", 4))
	assert.Equal(t, "\x1b[1mx\x1b[22m", hl("x", 1))
	assert.Equal(t, "x", hl("x", 0))
	assert.Equal(t, "x", fg("x", -1))
	assert.Equal(t, "\x1b[38;5;9mx\x1b[39m", fg("x", 9))
}

func TestNewPalette(t *testing.T) {
	colors := config.Default().Colors

	p := NewPalette(colors, termenv.ANSI256)
	assert.Equal(t, colors.Selected256, p.Selected)
	p = NewPalette(colors, termenv.ANSI)
	assert.Equal(t, colors.Selected, p.Selected)
	assert.Equal(t, PlainPalette(), NewPalette(colors, termenv.Ascii))
}

func TestLinePrefix(t *testing.T) {
	p := NewPalette(config.Default().Colors, termenv.ANSI256)

	plain := p.linePrefix(1, false, false, false)
	assert.Equal(t, "\x1b[48;5;234m", plain)

	remove := p.linePrefix(0, true, true, false)
	assert.Contains(t, remove, "\x1b["+p.Selected[1]+"m")
	install := p.linePrefix(0, true, false, true)
	assert.Contains(t, install, "\x1b["+p.Selected[0]+"m")
	assert.True(t, strings.HasSuffix(install, "\x1b["+p.Cursor+"m"))

	assert.Empty(t, PlainPalette().linePrefix(0, false, false, false))
}

func TestDetectProfile(t *testing.T) {
	tests := []struct {
		name      string
		override  string
		noColor   bool
		term      string
		colorterm string
		want      termenv.Profile
	}{
		{"override wins", "ansi", true, "xterm-256color", "truecolor", termenv.ANSI},
		{"override 256", "256", false, "", "", termenv.ANSI256},
		{"no color", "", true, "xterm-256color", "truecolor", termenv.Ascii},
		{"colorterm", "", false, "dumb", "24bit", termenv.TrueColor},
		{"known term", "", false, "tmux-256color", "", termenv.TrueColor},
		{"xterm", "", false, "xterm", "", termenv.ANSI256},
		{"undecided", "", false, "linux", "", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectProfile(tt.override, tt.noColor, tt.term, tt.colorterm))
		})
	}
}

func TestCounters(t *testing.T) {
	out := ansi.Strip(counters(0, 40, 2, 0))
	assert.Contains(t, out, "[ 1 / 40]")
	assert.Contains(t, out, "[- 2]")
	assert.NotContains(t, out, "[+")

	out = ansi.Strip(counters(8, 9, 0, 3))
	assert.Contains(t, out, "[9 / 9]")
	assert.Contains(t, out, "[+ 3]")
	assert.NotContains(t, out, "[-")
}

func TestFooterFitsWidth(t *testing.T) {
	f := newFooter(newBrowserKeyMap())
	for _, width := range []int{10, 40, 120} {
		assert.LessOrEqual(t, ansi.StringWidth(f.View(width, 0, 5, 1, 1)), width)
	}
}

func TestPrintPlan(t *testing.T) {
	f := colorFormatter("x")
	table, err := f.Format(NewRowSet(scenarioRows()), 80)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintPlan(&buf, backend.Plan{Remove: []int{0}, Install: []int{1}}, table, f.Palette, 80))
	out := buf.String()
	removeAt := strings.Index(out, "REMOVE")
	installAt := strings.Index(out, "INSTALL")
	require.GreaterOrEqual(t, removeAt, 0)
	require.Greater(t, installAt, removeAt)
	assert.Contains(t, out[removeAt:installAt], table.Groups[0][0])
	assert.Contains(t, out[installAt:], table.Groups[1][0])

	buf.Reset()
	require.NoError(t, PrintPlan(&buf, backend.Plan{Install: []int{1}}, table, f.Palette, 80))
	assert.NotContains(t, buf.String(), "REMOVE")
	assert.Contains(t, buf.String(), "INSTALL")
}

func TestBannerIsCentered(t *testing.T) {
	line := ansi.Strip(banner("REMOVE", 40, "1;41"))
	assert.Equal(t, 40, ansi.StringWidth(line))
	assert.True(t, strings.HasPrefix(line, blank(11)+"──══▶ REMOVE ◀══──"))
}

func TestColumnize(t *testing.T) {
	items := []coloredItem{{"a", -1}, {"bb", -1}, {"ccc", -1}, {"dd", -1}, {"e", -1}}
	assert.Equal(t, []string{
		"a    dd",
		"bb   e ",
		"ccc    ",
	}, columnize(items, 10))

	// too narrow for a single column
	assert.Equal(t, []string{"ab", "cd", "x "}, columnize([]coloredItem{{"abcd", -1}, {"x", -1}}, 2))
	assert.Nil(t, columnize(nil, 10))
}

func TestRenderInfo(t *testing.T) {
	info := backend.PackageInfo{Fields: []backend.Field{
		{Key: "Repository", Value: "extra"},
		{Key: "Name", Value: "foo"},
		{Key: "Version", Value: "1.0-1"},
		{Key: "Description", Value: "A foo tool"},
		{Key: "URL", Value: "https://example.org/foo"},
		{Key: "Depends On", Value: "glibc bar"},
		{Key: "Optional Deps", Value: "baz: for baz support\nqux: for qux"},
	}}

	assert.Equal(t, []string{"Width too small"}, RenderInfo(info, nil, 39, PlainPalette()))

	lines := RenderInfo(info, map[string]bool{"glibc": true}, 60, PlainPalette())
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "foo 1.0-1 "))
	assert.True(t, strings.HasSuffix(lines[0], "extra"))

	width := ansi.StringWidth(lines[0])
	for _, l := range lines {
		assert.Equal(t, width, ansi.StringWidth(l), "%q", l)
	}

	text := strings.Join(lines, "\n")
	assert.Contains(t, text, "A foo tool")
	assert.Contains(t, text, pad("URL", 15)+": https://example.org/foo")
	assert.Contains(t, text, pad("Depends On", 15)+": glibc  bar")
	assert.Contains(t, text, pad("Optional Deps", 15)+": baz: for baz support")
	assert.Contains(t, text, blank(infoGutter)+"qux: for qux")
}

func TestRenderInfoColorsInstalledPackages(t *testing.T) {
	p := NewPalette(config.Default().Colors, termenv.ANSI256)
	info := backend.PackageInfo{Fields: []backend.Field{
		{Key: "Name", Value: "foo"},
		{Key: "Depends On", Value: "glibc bar"},
	}}
	text := strings.Join(RenderInfo(info, map[string]bool{"glibc": true}, 60, p), "\n")
	assert.Contains(t, text, fg("glibc", p.Installed))
	assert.Contains(t, text, fg("bar", p.Name))
}

func TestPlaceOverlay(t *testing.T) {
	base := strings.TrimSuffix(strings.Repeat(strings.Repeat("x", 20)+"\n", 5), "\n")
	out := PlaceOverlay(base, "ab\ncd", 20)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.Repeat("x", 20), ansi.Strip(lines[0]))
	assert.Equal(t, strings.Repeat("x", 9)+"ab"+strings.Repeat("x", 9), ansi.Strip(lines[1]))
	assert.Equal(t, strings.Repeat("x", 9)+"cd"+strings.Repeat("x", 9), ansi.Strip(lines[2]))
	assert.True(t, strings.HasPrefix(lines[0], dimStart))
}

func TestOverlayErrors(t *testing.T) {
	o := newOverlay("foo", PlainPalette(), 3, 80, 24)
	assert.True(t, o.loading)

	o = o.withInfo(infoLoadedMsg{name: "foo", err: errors.New("pacman: database is locked")})
	assert.Contains(t, o.View(), "database is locked")

	o = o.withInfo(infoLoadedMsg{name: "foo", err: backend.ErrNoPackage})
	assert.Contains(t, o.View(), "No such package »foo«")
}

func TestCrashReport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	logFile := filepath.Join(dir, "pms.log")
	var log strings.Builder
	for i := range 300 {
		fmt.Fprintf(&log, "entry %03d\n", i)
	}
	log.WriteString("last words\n")
	require.NoError(t, os.WriteFile(logFile, []byte(log.String()), 0600))

	path, report := WriteCrashReport("boom", "goroutine 1 [running]:\n", logFile)
	require.Equal(t, filepath.Join(dir, "pms-crash-report.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, report, string(data))
	assert.Contains(t, report, "## Error\n\n```\nboom\n```")
	assert.Contains(t, report, "goroutine 1 [running]:")
	assert.Contains(t, report, "last words")
	assert.Contains(t, report, "entry 101")
	assert.NotContains(t, report, "entry 100")

	_, report = WriteCrashReport("boom", "", filepath.Join(dir, "missing.log"))
	assert.NotContains(t, report, "## Log")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "c\nd\n", tail("a\nb\nc\nd\n", 2))
	assert.Equal(t, "a\n", tail("a", 5))
}
