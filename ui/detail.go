package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"pms/backend"
)

// infoGutter is the width of the key column of the detail panel.
const infoGutter = 17

var (
	titleFields = map[string]bool{
		"Repository": true, "Name": true, "Version": true, "Description": true, "Groups": true,
	}
	packageListFields = map[string]bool{
		"Depends On": true, "Required By": true, "Optional For": true, "Replaces": true, "Conflicts With": true,
	}
	spacedFields = map[string]bool{
		"Depends On": true, "Required By": true, "Optional For": true, "Replaces": true, "Conflicts With": true,
		"Licenses": true, "Provides": true, "Optional Deps": true,
	}
)

type coloredItem struct {
	text  string
	color int
}

// columnize lays items out in as many columns as fit into width, filling
// column by column. Items wider than width are wrapped one per line.
func columnize(items []coloredItem, width int) []string {
	if len(items) == 0 {
		return nil
	}
	cwidth := 0
	for _, it := range items {
		cwidth = max(cwidth, runewidth.StringWidth(it.text))
	}
	ncols := min(len(items), width/(cwidth+2))

	var out []string
	if ncols < 1 {
		for _, it := range items {
			for _, w := range Wrap(it.text, width) {
				out = append(out, fg(pad(w, width), it.color))
			}
		}
		return out
	}

	nrows := (len(items) + ncols - 1) / ncols
	var cols [][]string
	for i := range ncols {
		lo := i * nrows
		if lo >= len(items) {
			continue
		}
		col := items[lo:min(lo+nrows, len(items))]
		cw := 0
		for _, it := range col {
			cw = max(cw, runewidth.StringWidth(it.text))
		}
		cells := make([]string, 0, nrows)
		for _, it := range col {
			cells = append(cells, fg(pad(it.text, cw), it.color))
		}
		for len(cells) < nrows {
			cells = append(cells, blank(cw))
		}
		cols = append(cols, cells)
	}

	for r := range nrows {
		row := make([]string, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		out = append(out, strings.Join(row, "  "))
	}
	return out
}

// RenderInfo formats package details for a panel at most width columns
// wide: a title line, groups, the description and then every other field
// next to its key. Package names are colored by installed state.
func RenderInfo(info backend.PackageInfo, installed map[string]bool, width int, p Palette) []string {
	if width < 40 {
		return []string{"Width too small"}
	}
	pkgColor := func(name string) int {
		return p.nameColor(installed[name])
	}
	valueWidth := width - infoGutter

	var fields []string
	for _, f := range info.Fields {
		if titleFields[f.Key] {
			continue
		}
		var txt []string
		for _, line := range strings.Split(f.Value, "\n") {
			var wrapped []string
			switch {
			case packageListFields[f.Key]:
				names := strings.Fields(line)
				items := make([]coloredItem, len(names))
				for i, n := range names {
					items[i] = coloredItem{text: n, color: pkgColor(n)}
				}
				wrapped = columnize(items, valueWidth)
			case f.Key == "Optional Deps":
				wrapped = Wrap(line, valueWidth)
				if len(wrapped) > 0 {
					if name, rest, ok := strings.Cut(wrapped[0], ": "); ok {
						wrapped[0] = fg(name, pkgColor(name)) + ": " + rest
					}
				}
			default:
				wrapped = Wrap(line, valueWidth)
			}
			txt = append(txt, wrapped...)
		}
		if len(txt) == 0 {
			continue
		}
		txt[0] = fg(pad(f.Key, infoGutter-2), p.InfoKey) + ": " + txt[0]
		for i := 1; i < len(txt); i++ {
			txt[i] = blank(infoGutter) + txt[i]
		}
		fields = append(fields, txt...)
		if spacedFields[f.Key] {
			fields = append(fields, "")
		}
	}

	name := info.Lookup("Name")
	version := info.Lookup("Version")
	repo := info.Lookup("Repository")
	titleWidth := runewidth.StringWidth(name+version+repo) + 2

	widest := titleWidth
	for _, l := range fields {
		widest = max(widest, ansi.StringWidth(l))
	}
	width = min(width, widest)

	out := []string{
		fg(name, pkgColor(name)) + " " + fg(version, p.Version) + " " +
			blank(width-titleWidth) + fg(repo, p.DB),
	}
	if groups, ok := info.Get("Groups"); ok {
		out = append(out, blank(width), fg(pad(groups, width), p.Groups))
	}
	out = append(out, blank(width))
	for _, d := range Wrap(info.Lookup("Description"), width) {
		out = append(out, pad(d, width))
	}
	out = append(out, blank(width))
	for _, l := range fields {
		out = append(out, l+blank(width-ansi.StringWidth(l)))
	}
	return out
}
