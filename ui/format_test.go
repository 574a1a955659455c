package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pms/backend"
	"pms/config"
)

func colorFormatter(pattern string) Formatter {
	return Formatter{
		Palette: NewPalette(config.Default().Colors, termenv.ANSI256),
		Term:    backend.MustTerm(pattern),
		MinDesc: 30,
	}
}

func scenarioRows() []backend.Row {
	return []backend.Row{
		{DB: "core", Name: "bash", Version: "5.2", Installed: true, Description: "GNU shell"},
		{DB: backend.ForeignDB, Name: "yay-bin", Version: "12.0", NewVersion: backend.Some("12.1"), Installed: true, Description: "AUR helper"},
	}
}

func longRows() []backend.Row {
	rows := scenarioRows()
	rows[1].Description = "Yet another yogurt. Pacman wrapper and AUR helper written in go"
	return rows
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"greedy", "a bb ccc dddd", 6, []string{"a bb", "ccc", "dddd"}},
		{"hard split", "abcdefghij xy", 4, []string{"abcd", "efgh", "ij", "xy"}},
		{"wide runes", "日本語 テキスト", 6, []string{"日本語", "テキス", "ト"}},
		{"collapses spaces", "  a   b  ", 10, []string{"a b"}},
		{"empty", "", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.width))
		})
	}
}

func TestWrapIsIdempotent(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog while a supercalifragilistic word goes by"
	for width := 1; width <= 40; width++ {
		first := Wrap(text, width)
		again := Wrap(strings.Join(first, " "), width)
		assert.Equal(t, first, again, "width %d", width)
		for _, line := range first {
			assert.LessOrEqual(t, len(line), width)
		}
	}
}

func TestWrapKeepsWordOrder(t *testing.T) {
	text := "Pacman wrapper and AUR helper written in go"
	lines := Wrap(text, 12)
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lines, " ")))
}

func TestComputeLayoutDropsColumns(t *testing.T) {
	w := MeasureWidths(longRows())
	require.Equal(t, Widths{DB: 7, Name: 7, Version: 4, Desc: 63}, w)

	l, err := ComputeLayout(w, 60, 30, true)
	require.NoError(t, err)
	assert.True(t, l.ShowDB)
	assert.True(t, l.ShowVersion)
	assert.False(t, l.ShowGroups)
	assert.True(t, l.SplitVersion)
	assert.Equal(t, 35, l.DescWidth)

	l, err = ComputeLayout(w, 50, 30, true)
	require.NoError(t, err)
	assert.False(t, l.ShowDB)
	assert.True(t, l.ShowVersion)

	l, err = ComputeLayout(w, 40, 30, true)
	require.NoError(t, err)
	assert.False(t, l.ShowDB)
	assert.False(t, l.ShowVersion)
	assert.Equal(t, 30, l.DescWidth)

	_, err = ComputeLayout(w, 39, 30, true)
	var layoutErr *LayoutError
	require.ErrorAs(t, err, &layoutErr)
	assert.Equal(t, 40, layoutErr.MinWidth)
	assert.Equal(t, "Terminal too small. Need at least 40 columns.", err.Error())
}

func TestComputeLayoutIsMonotonic(t *testing.T) {
	w := Widths{DB: 9, Name: 12, Version: 10, Group: 8, Groups: 20, Desc: 70}
	var prev Layout
	for width := w.Name + 33; width <= 200; width++ {
		l, err := ComputeLayout(w, width, 30, true)
		require.NoError(t, err, "width %d", width)
		if width > w.Name+33 {
			assert.False(t, prev.ShowGroups && !l.ShowGroups, "groups dropped at %d", width)
			assert.False(t, prev.ShowDB && !l.ShowDB, "db dropped at %d", width)
			assert.False(t, prev.ShowVersion && !l.ShowVersion, "version dropped at %d", width)
			sameColumns := prev.ShowGroups == l.ShowGroups && prev.ShowDB == l.ShowDB && prev.ShowVersion == l.ShowVersion
			if sameColumns {
				assert.GreaterOrEqual(t, min(l.DescWidth, w.Desc), min(prev.DescWidth, w.Desc), "width %d", width)
			}
		}
		prev = l
	}
}

// At 80 columns there is room to keep "12.0 → 12.1" on one line; see
// TestFormatSplitsVersionWhenNarrow for the two line form.
func TestFormatScenario(t *testing.T) {
	f := colorFormatter("sh")
	table, err := f.Format(NewRowSet(scenarioRows()), 80)
	require.NoError(t, err)

	assert.Contains(t, table.Header, "Name")
	assert.Contains(t, table.Header, "Description")
	require.Len(t, table.Groups, 2)

	yay := strings.Join(table.Groups[1], "\n")
	assert.Contains(t, yay, fg(" 12.1 ", f.Palette.NewVersion))
	assert.Contains(t, ansi.Strip(yay), "12.0 → 12.1")
	assert.Contains(t, table.Groups[0][0], hl("sh", f.Palette.Highlight))
}

func TestFormatSplitsVersionWhenNarrow(t *testing.T) {
	f := colorFormatter("yay")
	table, err := f.Format(NewRowSet(longRows()), 60)
	require.NoError(t, err)

	require.Len(t, table.Groups[1], 2)
	assert.Contains(t, table.Groups[1][1], fg(" 12.1 ", f.Palette.NewVersion))
	assert.Contains(t, table.Groups[1][0], hl("yay", f.Palette.Highlight))
	assert.Contains(t, ansi.Strip(table.Groups[1][0]), "Foreign")

	table, err = f.Format(NewRowSet(longRows()), 120)
	require.NoError(t, err)
	require.Len(t, table.Groups[1], 1)
	assert.Contains(t, ansi.Strip(table.Groups[1][0]), "12.0 → 12.1")
}

func TestFormatLinesFillWidth(t *testing.T) {
	rows := append(longRows(),
		backend.Row{DB: "extra", Name: "base-devel", Version: "1-2", Groups: backend.Some("base devel"), Description: "Basic tools to build Arch Linux packages"},
	)
	backend.SortRows(rows)
	f := colorFormatter("a")
	for _, width := range []int{45, 52, 60, 80, 100, 140} {
		table, err := f.Format(NewRowSet(rows), width)
		require.NoError(t, err, "width %d", width)
		require.Len(t, table.Groups, len(rows))
		for _, line := range table.Striped(f.Palette) {
			assert.Equal(t, width, ansi.StringWidth(line), "width %d: %q", width, ansi.Strip(line))
		}
		for i, group := range table.Groups {
			var words []string
			for _, line := range group {
				words = append(words, strings.Fields(ansi.Strip(line))...)
			}
			assert.True(t, inOrder(strings.Fields(rows[i].Description), words), "width %d row %d", width, i)
		}
	}
}

// inOrder reports whether want appears in got as a subsequence.
func inOrder(want, got []string) bool {
	j := 0
	for _, w := range got {
		if j < len(want) && w == want[j] {
			j++
		}
	}
	return j == len(want)
}

func TestFormatPlainHasNoEscapes(t *testing.T) {
	f := Formatter{Palette: PlainPalette(), Term: backend.MustTerm("bash"), MinDesc: 30}
	table, err := f.Format(NewRowSet(scenarioRows()), 80)
	require.NoError(t, err)
	for _, line := range table.Striped(f.Palette) {
		assert.NotContains(t, line, "\x1b")
	}
}

func TestFormatEmpty(t *testing.T) {
	f := colorFormatter("nothing")
	table, err := f.Format(NewRowSet(nil), 80)
	require.NoError(t, err)
	assert.Empty(t, table.Groups)
	assert.Contains(t, table.Header, "Description")

	var buf bytes.Buffer
	require.NoError(t, WriteANSI(&buf, f, NewRowSet(nil), 80))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "db\tpkg\tver\tgrps\tins\tnew\tdesc\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, scenarioRows()))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "core\tbash\t5.2\t\tinstalled\t\tGNU shell", lines[1])
	assert.Equal(t, "Foreign\tyay-bin\t12.0\t\tinstalled\t12.1\tAUR helper", lines[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, scenarioRows()[:1]))
	assert.JSONEq(t, `[{"db":"core","pkg":"bash","ver":"5.2","grps":null,"ins":true,"new":null,"desc":"GNU shell"}]`, buf.String())
}

func TestWriteANSILayoutError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteANSI(&buf, colorFormatter("x"), NewRowSet(scenarioRows()), 20)
	var layoutErr *LayoutError
	require.ErrorAs(t, err, &layoutErr)
	assert.Equal(t, 40, layoutErr.MinWidth)
	assert.Empty(t, buf.String())
}

func TestStripedZebra(t *testing.T) {
	f := colorFormatter("x")
	table, err := f.Format(NewRowSet(longRows()), 60)
	require.NoError(t, err)
	lines := table.Striped(f.Palette)
	require.Len(t, lines, 4)
	even := "\x1b[" + termenv.ANSI256Color(f.Palette.Zebra[0]).Sequence(true) + "m"
	odd := "\x1b[" + termenv.ANSI256Color(f.Palette.Zebra[1]).Sequence(true) + "m"
	assert.True(t, strings.HasPrefix(lines[1], even))
	assert.True(t, strings.HasPrefix(lines[2], odd))
	assert.True(t, strings.HasPrefix(lines[3], odd))
}
