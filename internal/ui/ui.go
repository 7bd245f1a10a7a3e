package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/store"
)

// ViewState represents the current view in the dashboard.
type ViewState int

const (
	ListView ViewState = iota
	ConfirmDeleteView
)

// progressStep is how far the +/- keys move the selected item's progress.
const progressStep = 5

// barWidth is the rendered width of the progress bar in cells.
const barWidth = 20

// barOffset is the column where the bar starts ("Progress: [" prefix).
const barOffset = 11

// tabs are the dashboard filters cycled with the tab key. Each is either
// a content type or a status.
var tabs = []string{"all", "article", "video", "book", "show", "in-progress", "completed"}

// snapshotMsg carries a pushed result-set snapshot into the Elm loop.
type snapshotMsg []models.ContentItem

// mutationDoneMsg reports the outcome of an add/update/remove command.
type mutationDoneMsg struct {
	err error
}

// Model represents the dashboard application state.
type Model struct {
	ctx     context.Context
	content *store.ContentStore
	view    ViewState
	width   int
	height  int

	list  list.Model
	items []models.ContentItem
	tab   int

	pendingDelete *models.ContentItem
	barLine       int
	err           error

	help help.Model
	keys keyMap
}

// NewModel creates a dashboard model over an already-subscribed content
// store.
func NewModel(ctx context.Context, content *store.ContentStore) *Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Traylist"
	l.SetShowHelp(false)

	return &Model{
		ctx:     ctx,
		content: content,
		view:    ListView,
		list:    l,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the cached list and starts waiting for pushed snapshots.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadItems(), m.waitForSnapshot())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		}

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case snapshotMsg:
		m.items = msg
		m.applyFilter()
		return m, m.waitForSnapshot()

	case mutationDoneMsg:
		m.err = msg.err
		m.items = m.content.Items()
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.view == ConfirmDeleteView && m.pendingDelete != nil {
		title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.pendingDelete.Title))
		warn := styles.warn.Render("This cannot be undone.")
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
		return fmt.Sprintf("%s\n%s\n\n%s", title, warn, helpView)
	}

	header := m.renderHeader()
	body := fmt.Sprintf("%s\n%s", header, m.list.View())

	bar := m.renderProgressBar()
	helpKeys := []key.Binding{m.keys.tab, m.keys.more, m.keys.less, m.keys.remove, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	m.barLine = strings.Count(body, "\n") + 1
	return fmt.Sprintf("%s\n%s\n%s", body, bar, helpView)
}

func (m *Model) renderHeader() string {
	stats := store.Count(m.items)
	counts := fmt.Sprintf("%d items • %d todo • %d in progress • %d completed",
		stats.Total, stats.Todo, stats.InProgress, stats.Completed)

	var parts []string
	for i, tab := range tabs {
		if i == m.tab {
			parts = append(parts, styles.ok.Render(tab))
		} else {
			parts = append(parts, styles.help.Render(tab))
		}
	}

	line := counts
	if m.err != nil {
		line = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return fmt.Sprintf("%s\n%s", line, strings.Join(parts, " | "))
}

func (m *Model) renderProgressBar() string {
	selected := m.selected()
	if selected == nil {
		return styles.help.Render("No item selected")
	}

	filled := selected.Progress * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("Progress: [%s] %d%% — click to set", bar, selected.Progress)
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.tab):
		m.tab = (m.tab + 1) % len(tabs)
		m.applyFilter()
		return m, nil

	case key.Matches(msg, m.keys.more):
		if sel := m.selected(); sel != nil {
			return m, m.setProgress(sel.ID, sel.Progress+progressStep)
		}
		return m, nil

	case key.Matches(msg, m.keys.less):
		if sel := m.selected(); sel != nil {
			return m, m.setProgress(sel.ID, sel.Progress-progressStep)
		}
		return m, nil

	case key.Matches(msg, m.keys.done):
		if sel := m.selected(); sel != nil {
			return m, m.setProgress(sel.ID, 100)
		}
		return m, nil

	case key.Matches(msg, m.keys.remove):
		if sel := m.selected(); sel != nil {
			m.pendingDelete = sel
			m.view = ConfirmDeleteView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		id := m.pendingDelete.ID
		m.pendingDelete = nil
		m.view = ListView
		return m, m.removeItem(id)
	case "n", "esc", "q":
		m.pendingDelete = nil
		m.view = ListView
		return m, nil
	}
	return m, nil
}

// handleMouse maps a click on the progress bar to an absolute progress
// value via [store.ProgressFromPosition].
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view != ListView || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Y != m.barLine || msg.X < barOffset || msg.X > barOffset+barWidth {
		return m, nil
	}

	sel := m.selected()
	if sel == nil {
		return m, nil
	}

	progress := store.ProgressFromPosition(msg.X-barOffset, barWidth)
	return m, m.setProgress(sel.ID, progress)
}

func (m *Model) selected() *models.ContentItem {
	if item, ok := m.list.SelectedItem().(contentItem); ok {
		return &item.item
	}
	return nil
}

func (m *Model) applyFilter() {
	filtered := store.FilterTab(m.items, tabs[m.tab])
	items := make([]list.Item, len(filtered))
	for i, it := range filtered {
		items[i] = contentItem{item: it}
	}
	m.list.SetItems(items)
}

func (m *Model) loadItems() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(m.content.Items())
	}
}

// waitForSnapshot blocks on the content store's update channel and feeds
// each pushed snapshot back into the Elm loop.
func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case items := <-m.content.Updates():
			return snapshotMsg(items)
		}
	}
}

func (m *Model) setProgress(id string, progress int) tea.Cmd {
	return func() tea.Msg {
		err := m.content.Update(m.ctx, id, map[string]any{"progress": progress})
		return mutationDoneMsg{err: err}
	}
}

func (m *Model) removeItem(id string) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{err: m.content.Remove(m.ctx, id)}
	}
}
