package ui

import (
	"context"
	"errors"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"pms/backend"
)

type Outcome int

const (
	Browsing Outcome = iota
	Confirmed
	Cancelled
)

// InfoLoader fetches the details shown in the info panel together with
// the set of installed package names.
type InfoLoader func(ctx context.Context, name string) (backend.PackageInfo, map[string]bool, error)

type Options struct {
	Padding      int
	WheelStep    int
	PollInterval time.Duration
}

type pollMsg struct{}

// frame is the visible part of the list, rebuilt after every state change.
type frame struct {
	lines     []string
	ymap      []int
	first     int
	last      int
	scrollbar bool
}

// Browser lets the user pick rows of a formatted table.
type Browser struct {
	rows      *RowSet
	formatter Formatter
	opts      Options
	loadInfo  InfoLoader

	width  int
	height int

	table     Table
	layoutErr error
	starts    []int
	total     int

	cursor    int
	offset    int
	selected  map[int]bool
	installed map[int]bool

	frame         frame
	pendingResize bool

	overlay     overlayModel
	showOverlay bool

	keys    browserKeyMap
	footer  footerModel
	spin    spinner.Model
	outcome Outcome
}

func NewBrowser(rs *RowSet, f Formatter, opts Options, load InfoLoader, width, height int) Browser {
	keys := newBrowserKeyMap()
	m := Browser{
		rows:      rs,
		formatter: f,
		opts:      opts,
		loadInfo:  load,
		width:     width,
		height:    height,
		selected:  map[int]bool{},
		installed: map[int]bool{},
		keys:      keys,
		footer:    newFooter(keys),
		spin:      spinner.New(spinner.WithSpinner(spinner.Monkey)),
	}
	for i, r := range rs.Rows {
		if r.Installed {
			m.installed[i] = true
		}
	}
	m.reformat()
	return m
}

func (m Browser) Init() tea.Cmd {
	cmds := []tea.Cmd{m.poll()}
	if m.layoutErr != nil {
		cmds = append(cmds, m.spin.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Browser) poll() tea.Cmd {
	return tea.Tick(m.opts.PollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func (m Browser) listHeight() int {
	return max(1, m.height-2)
}

// padding shrinks on small viewports so the cursor row stays visible.
func (m Browser) padding() int {
	return max(0, min(m.opts.Padding, (m.listHeight()-1)/2))
}

// reformat lays the table out for the current width. One column is kept
// free for the scrollbar.
func (m *Browser) reformat() {
	m.table, m.layoutErr = m.formatter.Format(m.rows, m.width-1)
	if m.layoutErr != nil {
		var layoutErr *LayoutError
		if errors.As(m.layoutErr, &layoutErr) {
			m.layoutErr = &LayoutError{MinWidth: layoutErr.MinWidth + 1}
		}
		zap.S().Debugw("layout failed", "width", m.width, "err", m.layoutErr)
		m.starts, m.total = nil, 0
		m.frame = frame{}
		return
	}
	m.starts = make([]int, len(m.table.Groups))
	m.total = 0
	for i, g := range m.table.Groups {
		m.starts[i] = m.total
		m.total += len(g)
	}
	m.setCursor(m.cursor)
	m.refresh()
}

// rowAt returns the row covering the given list line.
func (m Browser) rowAt(line int) int {
	line = max(0, min(line, m.total-1))
	return sort.Search(len(m.starts), func(i int) bool {
		return m.starts[i] > line
	}) - 1
}

func (m *Browser) setOffset(offset int) {
	m.offset = max(0, min(offset, max(0, m.total-m.listHeight())))
}

// setCursor clamps the cursor and scrolls so that it stays padding lines
// away from the viewport edges.
func (m *Browser) setCursor(cursor int) {
	n := len(m.rows.Rows)
	m.cursor = max(0, min(cursor, n-1))
	if n == 0 || len(m.starts) == 0 {
		return
	}
	maxh := m.listHeight()
	pad := m.padding()
	crow := m.starts[m.cursor]
	offset := m.offset
	if crow < offset+pad {
		offset = crow - pad
	}
	if crow > offset+maxh-1-pad {
		offset = crow - maxh + 1 + pad
	}
	m.setOffset(offset)
}

func (m *Browser) toggle(row int) {
	if row < 0 || row >= len(m.rows.Rows) {
		return
	}
	selected := maps.Clone(m.selected)
	if selected[row] {
		delete(selected, row)
	} else {
		selected[row] = true
	}
	m.selected = selected
}

func (m Browser) findFirst(r rune) (int, bool) {
	prefix := strings.ToLower(string(r))
	for i, row := range m.rows.Rows {
		if strings.HasPrefix(strings.ToLower(row.Name), prefix) {
			return i, true
		}
	}
	return 0, false
}

func (m *Browser) refresh() {
	maxh := m.listHeight()
	f := frame{first: -1, last: -1}
	if m.total > 0 {
		for i := m.rowAt(m.offset); i < len(m.table.Groups) && len(f.lines) < maxh; i++ {
			group := m.table.Groups[i][max(0, m.offset-m.starts[i]):]
			prefix := m.formatter.Palette.linePrefix(i, m.selected[i], m.installed[i], i == m.cursor)
			for _, line := range group {
				if len(f.lines) == maxh {
					break
				}
				f.lines = append(f.lines, prefix+line+reset)
				f.ymap = append(f.ymap, i)
			}
			if f.first < 0 {
				f.first = i
			}
			f.last = i
		}
	}
	f.scrollbar = m.total > maxh
	m.frame = f
}

func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width, m.height = msg.Width, msg.Height
			m.pendingResize = true
		}
		return m, nil

	case pollMsg:
		var cmd tea.Cmd
		if m.pendingResize {
			m.pendingResize = false
			hadErr := m.layoutErr != nil
			m.reformat()
			if m.showOverlay {
				m.overlay = m.overlay.resize(m.width, m.height)
			}
			if m.layoutErr != nil && !hadErr {
				cmd = m.spin.Tick
			}
		}
		return m, tea.Batch(cmd, m.poll())

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if m.layoutErr != nil {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
		if m.showOverlay {
			var cmd tea.Cmd
			m.overlay, cmd, _ = m.overlay.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case infoLoadedMsg:
		if m.showOverlay && m.overlay.name == msg.name {
			if msg.err != nil {
				zap.S().Warnw("could not load package info", "pkg", msg.name, "err", msg.err)
			}
			m.overlay = m.overlay.withInfo(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if m.layoutErr != nil {
			if key.Matches(msg, m.keys.abort) {
				return m.quit(Cancelled)
			}
			return m, nil
		}
		if m.showOverlay {
			var cmd tea.Cmd
			var closed bool
			m.overlay, cmd, closed = m.overlay.Update(msg)
			if closed {
				m.showOverlay = false
			}
			return m, cmd
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.layoutErr != nil {
			return m, nil
		}
		if m.showOverlay {
			var cmd tea.Cmd
			m.overlay, cmd, _ = m.overlay.Update(msg)
			return m, cmd
		}
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m Browser) quit(o Outcome) (tea.Model, tea.Cmd) {
	m.outcome = o
	zap.S().Infow("browser closed", "outcome", o, "selected", len(m.selected))
	return m, tea.Quit
}

func (m Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.starts) == 0 && !key.Matches(msg, m.keys.abort, m.keys.accept) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.abort):
		return m.quit(Cancelled)
	case key.Matches(msg, m.keys.accept):
		return m.quit(Confirmed)
	case key.Matches(msg, m.keys.up):
		m.setCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.down):
		m.setCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.first):
		m.setCursor(0)
	case key.Matches(msg, m.keys.last):
		m.setCursor(len(m.rows.Rows) - 1)
	case key.Matches(msg, m.keys.pageup):
		m.setCursor(m.rowAt(m.starts[m.cursor] - m.listHeight()))
	case key.Matches(msg, m.keys.pagedown):
		m.setCursor(m.rowAt(m.starts[m.cursor] + m.listHeight()))
	case key.Matches(msg, m.keys.toggle):
		m.toggle(m.cursor)
		m.setCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.info):
		return m.openInfo()
	case msg.Type == tea.KeyRunes && !msg.Alt && len(msg.Runes) == 1 && isASCIILetter(msg.Runes[0]):
		if i, ok := m.findFirst(msg.Runes[0]); ok {
			m.setCursor(i)
		}
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func (m *Browser) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	line := msg.Y - 1
	if msg.Y < 1 || msg.Y >= m.height-1 || line >= len(m.frame.ymap) {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.setOffset(m.offset - m.opts.WheelStep)
	case tea.MouseButtonWheelDown:
		m.setOffset(m.offset + m.opts.WheelStep)
	case tea.MouseButtonLeft:
		m.setCursor(m.frame.ymap[line])
	case tea.MouseButtonRight:
		m.toggle(m.frame.ymap[line])
	default:
		return
	}
	m.refresh()
}

func (m Browser) openInfo() (tea.Model, tea.Cmd) {
	if len(m.rows.Rows) == 0 {
		return m, nil
	}
	name := m.rows.Rows[m.cursor].Name
	m.overlay = newOverlay(name, m.formatter.Palette, m.opts.WheelStep, m.width, m.height)
	m.showOverlay = true

	load := m.loadInfo
	fetch := func() tea.Msg {
		if load == nil {
			return infoLoadedMsg{name: name, err: backend.ErrNoPackage}
		}
		info, installed, err := load(context.Background(), name)
		return infoLoadedMsg{name: name, info: info, installed: installed, err: err}
	}
	return m, tea.Batch(fetch, m.overlay.spin.Tick)
}

// counts returns the number of selected installed and not installed rows.
func (m Browser) counts() (removals, installs int) {
	for i := range m.selected {
		if m.installed[i] {
			removals++
		} else {
			installs++
		}
	}
	return removals, installs
}

func (m Browser) scrollbarCell(k int) string {
	n := len(m.rows.Rows)
	maxh := m.listHeight()
	top := m.frame.first * maxh / n
	low := m.frame.last * maxh / n
	cell := " "
	if k >= top && k <= low {
		cell = "█"
	}
	return sgr(m.formatter.Palette.Scrollbar, cell)
}

func (m Browser) View() string {
	if m.layoutErr != nil {
		content := m.spin.View() + " " + errorStyle.Render(m.layoutErr.Error())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}

	var b strings.Builder
	b.WriteString(m.table.Header)
	b.WriteByte('\n')
	for k := range m.listHeight() {
		if k < len(m.frame.lines) {
			b.WriteString(m.frame.lines[k])
		}
		if m.frame.scrollbar {
			b.WriteString(m.scrollbarCell(k))
		}
		b.WriteByte('\n')
	}
	removals, installs := m.counts()
	b.WriteString(m.footer.View(m.width, m.cursor, len(m.rows.Rows), removals, installs))

	if m.showOverlay {
		return PlaceOverlay(b.String(), m.overlay.View(), m.width)
	}
	return b.String()
}

// Result is what the browser left behind after the program quit.
type Result struct {
	Outcome   Outcome
	Cursor    int
	Selected  map[int]bool
	Table     Table
	Scrollbar bool
}

func (m Browser) Result() Result {
	return Result{
		Outcome:   m.outcome,
		Cursor:    m.cursor,
		Selected:  maps.Clone(m.selected),
		Table:     m.table,
		Scrollbar: m.frame.scrollbar,
	}
}
