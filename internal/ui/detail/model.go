// Package detail implements the application detail view.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tkiley/jobtrail/internal/keys"
	"github.com/tkiley/jobtrail/internal/model"
	"github.com/tkiley/jobtrail/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Model is the application detail view component.
type Model struct {
	app      *model.Application
	lastRun  *model.ScanRun
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg {
				return BackMsg{}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.loading {
		loadingStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return loadingStyle.Render("Loading application...")
	}

	if m.app == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No application selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.app == nil {
		return ""
	}

	app := m.app
	var sections []string

	// Title
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(
		app.Company+" / "+app.JobTitle,
	))

	statusBadge := theme.StatusStyle(app.Status).Render(string(app.Status))
	sections = append(sections, statusBadge)
	sections = append(sections, "")

	// Metadata table
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s  %s",
		metaStyle.Render("Applied:"),
		valStyle.Render(app.DateApplied.Format("2006-01-02")),
	))
	sections = append(sections, fmt.Sprintf(
		"%s  %s",
		metaStyle.Render("Updated:"),
		valStyle.Render(app.LastUpdate.Format("2006-01-02")),
	))

	// Separator
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, "")
	sections = append(sections, separator)
	sections = append(sections, "")

	// Most recent contributing message
	subjHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections = append(sections, subjHeaderStyle.Render("Latest Email"))

	subject := app.Subject
	if subject == "" {
		subject = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No subject recorded")
	}
	sections = append(sections, subject)

	// Last scan summary, when one exists
	if m.lastRun != nil {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")

		scanHeaderStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite)

		sections = append(sections, scanHeaderStyle.Render("Last Scan"))
		sections = append(sections, fmt.Sprintf(
			"%s %s  %s %d seen, %d matched",
			metaStyle.Render("Finished:"),
			valStyle.Render(m.lastRun.FinishedAt.Local().Format("2006-01-02 15:04")),
			metaStyle.Render("Messages:"),
			m.lastRun.MessagesSeen,
			m.lastRun.MessagesClassified,
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetApplication updates the record being displayed and re-renders the
// content.
func (m *Model) SetApplication(app *model.Application, lastRun *model.ScanRun) {
	m.app = app
	m.lastRun = lastRun
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}
