package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"pms/backend"
)

const (
	dimStart = "\x1b[2m"
	dimEnd   = "\x1b[22m"
)

// PlaceOverlay centers content over a dimmed, colorless copy of base.
// base is width columns wide.
func PlaceOverlay(base, content string, width int) string {
	baseLines := strings.Split(base, "\n")
	contentLines := strings.Split(content, "\n")

	contentHeight := len(contentLines)
	contentWidth := lipgloss.Width(content)

	contentRowStart := (len(baseLines) - contentHeight) / 2
	contentRowEnd := contentRowStart + contentHeight
	contentColStart := max(0, (width-contentWidth)/2)

	var builder strings.Builder
	builder.Grow(len(base))

	for row, baseLine := range baseLines {
		plain := ansi.Strip(baseLine)
		builder.WriteString(dimStart)
		if row >= contentRowStart && row < contentRowEnd {
			builder.WriteString(pad(ansi.Truncate(plain, contentColStart, ""), contentColStart))
			builder.WriteString(dimEnd)
			builder.WriteString(contentLines[row-contentRowStart])
			builder.WriteString(dimStart)
			builder.WriteString(ansi.Cut(plain, contentColStart+contentWidth, width))
		} else {
			builder.WriteString(plain)
		}
		builder.WriteString(dimEnd)

		if row < len(baseLines)-1 {
			builder.WriteRune('\n')
		}
	}

	return builder.String()
}

type infoLoadedMsg struct {
	name      string
	info      backend.PackageInfo
	installed map[string]bool
	err       error
}

// overlayModel is the detail panel of one package.
type overlayModel struct {
	name      string
	loading   bool
	info      backend.PackageInfo
	installed map[string]bool
	err       error
	palette   Palette
	keys      overlayKeyMap
	wheelStep int
	cols      int
	rows      int
	lines     []string
	vp        viewport.Model
	spin      spinner.Model
}

func newOverlay(name string, p Palette, wheelStep, cols, rows int) overlayModel {
	o := overlayModel{
		name:      name,
		loading:   true,
		palette:   p,
		keys:      newOverlayKeyMap(),
		wheelStep: wheelStep,
		cols:      cols,
		rows:      rows,
		spin:      spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	o.render()
	return o
}

func (o overlayModel) withInfo(msg infoLoadedMsg) overlayModel {
	o.loading = false
	o.info = msg.info
	o.installed = msg.installed
	o.err = msg.err
	o.render()
	return o
}

func (o overlayModel) resize(cols, rows int) overlayModel {
	o.cols, o.rows = cols, rows
	o.render()
	return o
}

func (o overlayModel) content() []string {
	switch {
	case o.loading:
		return []string{fmt.Sprintf("%s loading »%s«", o.spin.View(), o.name)}
	case errors.Is(o.err, backend.ErrNoPackage):
		return []string{fmt.Sprintf("No such package »%s«", o.name)}
	case o.err != nil:
		return Wrap(o.err.Error(), max(1, o.cols-4))
	}
	return RenderInfo(o.info, o.installed, o.cols-4, o.palette)
}

// render sizes the viewport to the content, bounded by the screen.
func (o *overlayModel) render() {
	lines := o.content()
	widest := 1
	for _, l := range lines {
		widest = max(widest, ansi.StringWidth(l))
	}
	nw := max(1, min(widest, o.cols-4))
	nr := max(1, min(len(lines), o.rows-2))

	for i, l := range lines {
		lines[i] = ansi.Truncate(l, nw, "")
	}
	o.lines = lines

	yOffset := o.vp.YOffset
	o.vp = viewport.New(nw, nr)
	o.vp.SetContent(strings.Join(lines, "\n"))
	o.vp.SetYOffset(yOffset)
}

func (o overlayModel) scroll(n int) overlayModel {
	o.vp.SetYOffset(o.vp.YOffset + n)
	return o
}

// Update handles pagination. Any other key closes the panel.
func (o overlayModel) Update(msg tea.Msg) (overlayModel, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, o.keys.up):
			return o.scroll(-1), nil, false
		case key.Matches(msg, o.keys.down):
			return o.scroll(1), nil, false
		case key.Matches(msg, o.keys.pageup):
			return o.scroll(-o.vp.Height), nil, false
		case key.Matches(msg, o.keys.pagedown):
			return o.scroll(o.vp.Height), nil, false
		case key.Matches(msg, o.keys.first):
			o.vp.GotoTop()
			return o, nil, false
		case key.Matches(msg, o.keys.last):
			o.vp.GotoBottom()
			return o, nil, false
		}
		return o, nil, true
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return o, nil, false
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return o.scroll(-o.wheelStep), nil, false
		case tea.MouseButtonWheelDown:
			return o.scroll(o.wheelStep), nil, false
		}
	case spinner.TickMsg:
		if o.loading {
			var cmd tea.Cmd
			o.spin, cmd = o.spin.Update(msg)
			o.render()
			return o, cmd, false
		}
	}
	return o, nil, false
}

func (o overlayModel) View() string {
	return overlayFrameStyle.Render(o.vp.View())
}
