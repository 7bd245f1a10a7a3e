package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	tab    key.Binding
	more   key.Binding
	less   key.Binding
	done   key.Binding
	remove key.Binding
	yes    key.Binding
	no     key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
		more:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "progress up")),
		less:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "progress down")),
		done:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "mark complete")),
		remove: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		yes:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.tab},
		{k.more, k.less, k.done},
		{k.remove, k.yes, k.no},
		{k.quit},
	}
}
