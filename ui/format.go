package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"pms/backend"
)

// LayoutError means the table cannot fit into the requested width.
type LayoutError struct {
	MinWidth int
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("Terminal too small. Need at least %d columns.", e.MinWidth)
}

// Widths are the intrinsic column widths of a row set. Group is the widest
// single group name, Groups the widest complete groups field.
type Widths struct {
	DB      int
	Name    int
	Version int
	Group   int
	Groups  int
	Desc    int
}

var labelWidths = Widths{DB: 4, Name: 4, Version: 7, Desc: 11}

func MeasureWidths(rows []backend.Row) Widths {
	if len(rows) == 0 {
		return labelWidths
	}
	var w Widths
	for _, r := range rows {
		w.DB = max(w.DB, runewidth.StringWidth(r.DB))
		w.Name = max(w.Name, runewidth.StringWidth(r.Name))
		w.Version = max(w.Version, runewidth.StringWidth(r.Version))
		if nv, ok := r.NewVersion.Get(); ok {
			w.Version = max(w.Version, runewidth.StringWidth(nv))
		}
		for _, g := range r.GroupList() {
			w.Group = max(w.Group, runewidth.StringWidth(g))
		}
		w.Groups = max(w.Groups, runewidth.StringWidth(r.Groups.OrElse("")))
		w.Desc = max(w.Desc, runewidth.StringWidth(r.Description))
	}
	return w
}

// RowSet is an immutable row slice with lazily measured widths.
type RowSet struct {
	Rows   []backend.Row
	widths *Widths
	anyNew *bool
}

func NewRowSet(rows []backend.Row) *RowSet {
	return &RowSet{Rows: rows}
}

func (rs *RowSet) Widths() Widths {
	if rs.widths == nil {
		w := MeasureWidths(rs.Rows)
		rs.widths = &w
	}
	return *rs.widths
}

func (rs *RowSet) AnyNewVersion() bool {
	if rs.anyNew == nil {
		found := false
		for _, r := range rs.Rows {
			if r.NewVersion.IsSet() {
				found = true
				break
			}
		}
		rs.anyNew = &found
	}
	return *rs.anyNew
}

// Layout describes which columns are shown and how wide they are.
type Layout struct {
	Width        int
	DescWidth    int
	ShowDB       bool
	ShowGroups   bool
	ShowVersion  bool
	SplitVersion bool
	SplitGroups  bool
	GroupsWidth  int
}

// ComputeLayout drops groups, db and version (in that order) until the
// description gets at least minDesc columns, then spends surplus space on
// single-line versions and groups.
func ComputeLayout(w Widths, width, minDesc int, anyNew bool) (Layout, error) {
	l := Layout{
		Width:        width,
		DescWidth:    width - (w.DB + w.Name + w.Version + w.Group) - 9,
		ShowDB:       true,
		ShowGroups:   true,
		ShowVersion:  true,
		SplitVersion: true,
		SplitGroups:  true,
		GroupsWidth:  w.Group,
	}
	if l.DescWidth < minDesc || w.Group == 0 {
		l.ShowGroups = false
		l.DescWidth += w.Group + 2
	}
	if l.DescWidth < minDesc {
		l.ShowDB = false
		l.DescWidth += w.DB + 2
	}
	if l.DescWidth < minDesc {
		l.ShowVersion = false
		l.DescWidth += w.Version + 2
	}
	if l.DescWidth < minDesc {
		return l, &LayoutError{MinWidth: w.Name + minDesc + 3}
	}

	if l.ShowVersion && anyNew && l.DescWidth-w.Desc > w.Version+3 {
		l.DescWidth -= w.Version + 3
		l.SplitVersion = false
	}
	if l.ShowGroups && l.DescWidth-w.Desc > w.Groups-w.Group {
		l.DescWidth -= w.Groups - w.Group
		l.SplitGroups = false
		l.GroupsWidth = w.Groups
	}
	return l, nil
}

// Table is a formatted row set: the header line and one line-group per
// row, without zebra backgrounds.
type Table struct {
	Header string
	Groups [][]string
	Layout Layout
}

// Lines returns the number of physical lines of all row groups.
func (t Table) Lines() int {
	n := 0
	for _, g := range t.Groups {
		n += len(g)
	}
	return n
}

// Striped returns the header followed by every row line on its zebra
// background.
func (t Table) Striped(p Palette) []string {
	out := make([]string, 0, t.Lines()+1)
	out = append(out, t.Header)
	for n, group := range t.Groups {
		for _, line := range group {
			out = append(out, bg(line, p.zebra(n)))
		}
	}
	return out
}

type Formatter struct {
	Palette Palette
	Term    backend.Term
	MinDesc int
}

func (f Formatter) Format(rs *RowSet, width int) (Table, error) {
	w := rs.Widths()
	layout, err := ComputeLayout(w, width, f.MinDesc, rs.AnyNewVersion())
	if err != nil {
		return Table{}, err
	}

	t := Table{
		Header: f.header(w, layout),
		Groups: make([][]string, len(rs.Rows)),
		Layout: layout,
	}
	for i, r := range rs.Rows {
		t.Groups[i] = f.row(r, w, layout)
	}
	return t, nil
}

func (f Formatter) header(w Widths, l Layout) string {
	cell := func(label string, width int) string {
		return sgr(f.Palette.Header, " "+pad(truncate(label, width), width)+" ")
	}
	var b strings.Builder
	if l.ShowDB {
		b.WriteString(cell("Repo", w.DB))
	}
	if l.ShowGroups {
		b.WriteString(cell("Group(s)", l.GroupsWidth))
	}
	b.WriteString(cell("Name", w.Name))
	if l.ShowVersion {
		if l.SplitVersion {
			b.WriteString(cell("Version", w.Version))
		} else {
			b.WriteString(cell("Version", w.Version*2+3))
		}
	}
	b.WriteString(cell("Description", l.DescWidth-1))
	return b.String()
}

// highlight emphasizes every match of the search term in text.
func (f Formatter) highlight(text string) string {
	matches := f.Term.Matches(text)
	if len(matches) == 0 || f.Palette.Highlight <= 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		b.WriteString(hl(text[m[0]:m[1]], f.Palette.Highlight))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func blank(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat(" ", width)
}

func (f Formatter) row(r backend.Row, w Widths, l Layout) []string {
	p := f.Palette

	desc := Wrap(r.Description, l.DescWidth)
	if len(desc) == 0 {
		desc = []string{""}
	}
	groups := []string{""}
	if g, ok := r.Groups.Get(); ok {
		if l.SplitGroups {
			groups = r.GroupList()
		} else {
			groups = []string{g}
		}
	}
	newVer, hasNew := r.NewVersion.Get()

	height := len(desc)
	if l.ShowGroups {
		height = max(height, len(groups))
	}
	if hasNew && l.SplitVersion && l.ShowVersion {
		height = max(height, 2)
	}

	lines := make([]strings.Builder, height)

	if l.ShowDB {
		lines[0].WriteString(fg(" "+pad(r.DB, w.DB)+" ", p.dbColor(r.IsForeign())))
		for i := 1; i < height; i++ {
			lines[i].WriteString(blank(w.DB + 2))
		}
	}

	if l.ShowGroups {
		for i := range height {
			if i < len(groups) {
				g := groups[i]
				lines[i].WriteString(fg(" "+f.highlight(g)+blank(l.GroupsWidth-runewidth.StringWidth(g))+" ", p.Groups))
			} else {
				lines[i].WriteString(blank(l.GroupsWidth + 2))
			}
		}
	}

	name := " " + f.highlight(r.Name) + blank(w.Name-runewidth.StringWidth(r.Name)) + " "
	lines[0].WriteString(fg(name, p.nameColor(r.Installed)))
	for i := 1; i < height; i++ {
		lines[i].WriteString(blank(w.Name + 2))
	}

	if l.ShowVersion {
		verCell := fg(" "+pad(r.Version, w.Version)+" ", p.versionColor(r.Installed))
		newCell := ""
		if hasNew {
			newCell = fg(" "+pad(newVer, w.Version)+" ", p.NewVersion)
		}
		cellWidth := w.Version + 2
		if !l.SplitVersion {
			cellWidth = w.Version*2 + 5
			if hasNew {
				verCell += "→" + newCell
			} else {
				verCell += blank(w.Version + 3)
			}
		}
		lines[0].WriteString(verCell)
		for i := 1; i < height; i++ {
			if i == 1 && hasNew && l.SplitVersion {
				lines[i].WriteString(newCell)
				continue
			}
			lines[i].WriteString(blank(cellWidth))
		}
	}

	for i := range height {
		d := ""
		if i < len(desc) {
			d = desc[i]
		}
		lines[i].WriteString(fg(" "+f.highlight(d)+blank(l.DescWidth-runewidth.StringWidth(d)), p.Description))
	}

	out := make([]string, height)
	for i := range lines {
		out[i] = lines[i].String()
	}
	return out
}
