package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type browserKeyMap struct {
	up       key.Binding
	down     key.Binding
	pageup   key.Binding
	pagedown key.Binding
	first    key.Binding
	last     key.Binding
	toggle   key.Binding
	info     key.Binding
	accept   key.Binding
	abort    key.Binding
}

func newBrowserKeyMap() browserKeyMap {
	return browserKeyMap{
		up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "move up")),
		down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "move down")),
		pageup:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		pagedown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "page down")),
		first:    key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first")),
		last:     key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("Space", "Select")),
		info:     key.NewBinding(key.WithKeys("f1", "tab"), key.WithHelp("F1", "Pkg-Info")),
		accept:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Accept")),
		abort:    key.NewBinding(key.WithKeys("esc", "f10", "ctrl+c"), key.WithHelp("Escape", "Abort")),
	}
}

func (k browserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.info, k.accept, k.toggle, k.abort}
}

func (k browserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.pageup, k.pagedown, k.first, k.last},
		{k.info, k.accept, k.toggle, k.abort},
	}
}

type overlayKeyMap struct {
	up       key.Binding
	down     key.Binding
	pageup   key.Binding
	pagedown key.Binding
	first    key.Binding
	last     key.Binding
}

func newOverlayKeyMap() overlayKeyMap {
	return overlayKeyMap{
		up:       key.NewBinding(key.WithKeys("up")),
		down:     key.NewBinding(key.WithKeys("down")),
		pageup:   key.NewBinding(key.WithKeys("pgup")),
		pagedown: key.NewBinding(key.WithKeys("pgdown")),
		first:    key.NewBinding(key.WithKeys("home")),
		last:     key.NewBinding(key.WithKeys("end")),
	}
}

func newLegend() help.Model {
	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color("123"))
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color("27"))
	return h
}
