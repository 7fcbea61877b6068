// Package applist implements the main application list view.
package applist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tkiley/jobtrail/internal/keys"
	"github.com/tkiley/jobtrail/internal/model"
	"github.com/tkiley/jobtrail/internal/store"
	"github.com/tkiley/jobtrail/internal/theme"
)

// ApplicationsLoadedMsg is sent when applications have been loaded from
// the store.
type ApplicationsLoadedMsg struct {
	Applications []model.Application
}

// SelectedApplicationMsg is sent when a user selects a record to view
// details.
type SelectedApplicationMsg struct {
	Key model.ApplicationKey
}

// sortModes defines the available sort modes cycled by Tab.
var sortModes = []string{
	"last_update",
	"company",
	"job_title",
	"status",
	"date_applied",
}

// Model is the main application list view component.
type Model struct {
	list          list.Model
	store         store.Store
	keys          *keys.KeyMap
	filter        store.ApplicationFilter
	statusFilters map[model.Status]bool
	sortIndex     int
	searchMode    bool
	searchInput   textinput.Model
	width         int
	height        int
}

// New creates a new application list model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	delegate := ItemDelegate{}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.Title = "Applications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search applications..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:  l,
		store: s,
		keys:  k,
		filter: store.ApplicationFilter{
			SortBy:   "last_update",
			SortDesc: true,
		},
		statusFilters: make(map[model.Status]bool),
		sortIndex:     0,
		searchInput:   si,
		width:         width,
		height:        height,
	}
}

// Init returns a command that loads the initial set of applications.
func (m Model) Init() tea.Cmd {
	return m.LoadApplications()
}

// Update handles messages for the application list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ApplicationsLoadedMsg:
		items := make([]list.Item, len(msg.Applications))
		for i, app := range msg.Applications {
			items[i] = ApplicationItem{App: app}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	// Delegate to list model for other messages
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadApplications()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadApplications()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(ApplicationItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedApplicationMsg{Key: item.App.Key()}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterSent):
		m.toggleStatusFilter(model.StatusApplicationSent)
		return m, m.LoadApplications()

	case key.Matches(msg, m.keys.FilterInterview):
		m.toggleStatusFilter(model.StatusInterviewRequested)
		return m, m.LoadApplications()

	case key.Matches(msg, m.keys.FilterRejected):
		m.toggleStatusFilter(model.StatusRejected)
		return m, m.LoadApplications()

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(ApplicationItem)
		if !ok {
			return m, nil
		}
		return m, m.deleteApplication(item.App.Key())

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		m.filter.SortBy = sortModes[m.sortIndex]
		return m, m.LoadApplications()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// toggleStatusFilter toggles a status filter on or off and updates the
// filter struct accordingly.
func (m *Model) toggleStatusFilter(status model.Status) {
	if m.statusFilters[status] {
		delete(m.statusFilters, status)
	} else {
		m.statusFilters[status] = true
	}

	// Count active status filters
	var active []model.Status
	for st, on := range m.statusFilters {
		if on {
			active = append(active, st)
		}
	}

	// If exactly one status filter is active, apply it; otherwise show all
	if len(active) == 1 {
		s := active[0]
		m.filter.Status = &s
	} else {
		m.filter.Status = nil
	}
}

// View renders the application list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no applications are available.
func (m Model) renderEmptyState() string {
	hasFilters := m.filter.Status != nil || m.filter.Query != nil

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if hasFilters {
		return style.Render("No matching applications.\nTry adjusting your filters.")
	}

	return style.Render(
		"No applications tracked yet.\n\n" +
			"Press 'r' to scan your mailbox, or 'c' to configure an account.",
	)
}

// LoadApplications returns a tea.Cmd that queries the store with the
// current filter.
func (m Model) LoadApplications() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		apps, err := s.GetApplications(context.Background(), filter)
		if err != nil {
			return ApplicationsLoadedMsg{Applications: nil}
		}
		return ApplicationsLoadedMsg{Applications: apps}
	}
}

// deleteApplication removes a record from the store and reloads the list.
func (m Model) deleteApplication(key model.ApplicationKey) tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		if err := s.DeleteApplication(context.Background(), key); err != nil {
			return ApplicationsLoadedMsg{Applications: nil}
		}
		apps, err := s.GetApplications(context.Background(), filter)
		if err != nil {
			return ApplicationsLoadedMsg{Applications: nil}
		}
		return ApplicationsLoadedMsg{Applications: apps}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
