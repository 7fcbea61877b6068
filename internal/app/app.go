// Package app holds the root Bubble Tea model and view routing.
package app

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tkiley/jobtrail/internal/classify"
	"github.com/tkiley/jobtrail/internal/credential"
	"github.com/tkiley/jobtrail/internal/export"
	"github.com/tkiley/jobtrail/internal/keys"
	"github.com/tkiley/jobtrail/internal/mail"
	"github.com/tkiley/jobtrail/internal/model"
	"github.com/tkiley/jobtrail/internal/scan"
	"github.com/tkiley/jobtrail/internal/store"
	appsync "github.com/tkiley/jobtrail/internal/sync"
	"github.com/tkiley/jobtrail/internal/ui"
	"github.com/tkiley/jobtrail/internal/ui/applist"
	"github.com/tkiley/jobtrail/internal/ui/command"
	"github.com/tkiley/jobtrail/internal/ui/detail"
	helpview "github.com/tkiley/jobtrail/internal/ui/help"
	"github.com/tkiley/jobtrail/internal/ui/setup"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewSetup
	ViewHelp
	ViewCommand
)

// detailLoadedMsg carries a loaded application record to the detail view.
type detailLoadedMsg struct {
	app     *model.Application
	lastRun *model.ScanRun
}

// exportDoneMsg reports the outcome of a CSV export.
type exportDoneMsg struct {
	path string
	err  error
}

// scanStartFailedMsg reports that a scan could not even be started,
// usually because no password is available.
type scanStartFailedMsg struct {
	err error
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the persistence layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        *store.SQLiteStore
	cfg          *model.AppConfig
	cfgPath      string
	keys         *keys.KeyMap

	appList     applist.Model
	detail      detail.Model
	helpView    helpview.Model
	commandView command.Model
	setupView   setup.Model

	runner     *appsync.Runner
	normalizer *mail.Normalizer
	classifier *classify.Classifier

	ready            bool
	statusMessage    string
	authErrorMessage string
}

// New creates a new root application model. When the account is not yet
// configured the app starts in the setup view.
func New(s *store.SQLiteStore, cfg *model.AppConfig, cfgPath string) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		currentView: ViewList,
		store:       s,
		cfg:         cfg,
		cfgPath:     cfgPath,
		keys:        k,
		appList:     applist.New(s, k, 80, 24),
		detail:      detail.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		runner:      appsync.New(s, cfg.Filter),
		normalizer:  mail.DefaultNormalizer(),
		classifier:  classify.New(classify.DefaultRules()),
	}
	m.setupView = m.newSetupView()

	if !cfg.Account.Configured() {
		m.currentView = ViewSetup
	}

	return m
}

// newSetupView builds a setup form pre-filled with the current account.
func (m *Model) newSetupView() setup.Model {
	cfg := m.cfg
	cfgPath := m.cfgPath

	validate := func(ctx context.Context, account model.AccountConfig, password string) (string, error) {
		scanner := scan.NewScanner(account, password, nil, nil)
		return scanner.Validate(ctx)
	}
	save := func(account model.AccountConfig) error {
		cfg.Account = account
		return model.SaveConfig(cfgPath, cfg)
	}

	return setup.New(cfg.Account, validate, save, 80, 24)
}

// Init loads the stored records and, when an account is configured,
// starts an initial mailbox scan.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.appList.Init()}

	if m.currentView == ViewSetup {
		cmds = append(cmds, m.setupView.Init())
	} else if m.cfg.Account.Configured() {
		cmds = append(cmds, m.triggerScan())
	}

	return tea.Batch(cmds...)
}

// triggerScan looks up the account password and starts a background
// mailbox scan.
func (m Model) triggerScan() tea.Cmd {
	account := m.cfg.Account
	password, err := credential.GetPassword(account.Username)
	if err != nil {
		return func() tea.Msg {
			return scanStartFailedMsg{err: fmt.Errorf("loading password: %w", err)}
		}
	}

	scanner := scan.NewScanner(account, password, m.normalizer, m.classifier)
	return m.runner.TriggerScan(scanner, account.Username, m.cfg.Scan)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.appList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.setupView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case scanStartFailedMsg:
		m.statusMessage = msg.err.Error()
		return m, nil

	case appsync.ScanProgressMsg:
		m.statusMessage = fmt.Sprintf(
			"scanning... %d/%d messages, %d matched",
			msg.Seen, msg.Total, msg.Matched,
		)
		return m, m.runner.WaitForNextResult()

	case appsync.ScanResultMsg:
		if msg.AuthError != nil {
			m.authErrorMessage = msg.AuthError.Message
		} else if msg.Error == nil {
			m.authErrorMessage = ""
		}

		if msg.Error != nil {
			m.statusMessage = fmt.Sprintf("scan failed: %v", msg.Error)
		} else {
			m.statusMessage = fmt.Sprintf(
				"scan done: %d messages, %d matched, %d records",
				msg.Run.MessagesSeen, msg.Run.MessagesClassified,
				msg.Run.RecordsUpserted,
			)
		}

		return m, tea.Batch(
			m.appList.LoadApplications(),
			m.runner.WaitForNextResult(),
		)

	case applist.SelectedApplicationMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetLoading(true)
		return m, m.loadApplicationDetail(msg.Key)

	case detailLoadedMsg:
		m.detail.SetApplication(msg.app, msg.lastRun)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			m.statusMessage = fmt.Sprintf("exported to %s", msg.path)
		}
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case setup.DoneMsg:
		m.currentView = ViewList
		if msg.Saved {
			m.statusMessage = "account saved"
			return m, tea.Batch(
				m.appList.LoadApplications(),
				m.triggerScan(),
			)
		}
		return m, m.appList.LoadApplications()

	case tea.KeyMsg:
		// Global keys that work regardless of current view
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.currentView == ViewList {
				return m, tea.Quit
			}

		case "?":
			// Do not intercept while the setup form has input focus
			if m.currentView == ViewSetup {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case ":":
			if m.currentView == ViewSetup {
				break
			}
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case "c":
			if m.currentView == ViewList {
				m.previousView = m.currentView
				m.currentView = ViewSetup
				m.setupView = m.newSetupView()
				m.setupView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
				return m, m.setupView.Init()
			}

		case "r":
			if m.currentView == ViewList {
				return m, m.triggerScan()
			}

		case "e":
			if m.currentView == ViewList {
				return m, m.exportCSV(m.cfg.Export.Path)
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.appList, cmd = m.appList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("JobTrail", m.scanStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.appList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewSetup:
		return m.setupView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// scanStatus returns a short string describing the scan state for the
// header bar.
func (m Model) scanStatus() string {
	if !m.cfg.Account.Configured() {
		return "no account"
	}

	status := m.runner.Status()
	switch status.State {
	case appsync.ScanRunning:
		return "scanning"
	case appsync.ScanFailed:
		return "scan failed"
	default:
		if status.LastScan.IsZero() {
			return m.cfg.Account.Username
		}
		return fmt.Sprintf(
			"%s · scanned %s",
			m.cfg.Account.Username,
			status.LastScan.Format("15:04"),
		)
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	// Show auth error prominently when present.
	if m.authErrorMessage != "" && m.currentView == ViewList {
		return m.authErrorMessage
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close command | enter execute | esc back"
	case ViewDetail:
		return "esc back | j/k scroll"
	case ViewSetup:
		return "enter next | esc cancel"
	default:
		if m.statusMessage != "" {
			return m.statusMessage
		}
		return "q quit | ? help | r scan | e export | / search | 1/2/3 filter | tab sort"
	}
}

// loadApplicationDetail returns a command that loads a record and the
// most recent scan run from the store.
func (m Model) loadApplicationDetail(key model.ApplicationKey) tea.Cmd {
	s := m.store
	account := m.cfg.Account.Username
	return func() tea.Msg {
		ctx := context.Background()

		app, err := s.GetApplicationByKey(ctx, key)
		if err != nil || app == nil {
			return detailLoadedMsg{}
		}

		// Scan history is optional context; ignore lookup failures.
		lastRun, _ := s.LastScanRun(ctx, account)
		return detailLoadedMsg{app: app, lastRun: lastRun}
	}
}

// exportCSV returns a command that writes the current records to a CSV
// file, honoring the list's default newest-first ordering.
func (m Model) exportCSV(path string) tea.Cmd {
	s := m.store
	if path == "" {
		path = "job_applications.csv"
	}
	return func() tea.Msg {
		apps, err := s.GetApplications(context.Background(), store.ApplicationFilter{
			SortBy:   "last_update",
			SortDesc: true,
		})
		if err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		if err := export.SaveCSV(path, apps); err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		return exportDoneMsg{path: path}
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	name, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")

	switch name {
	case "scan", "refresh":
		return m.triggerScan()
	case "export":
		path := strings.TrimSpace(arg)
		if path == "" {
			path = m.cfg.Export.Path
		}
		return m.exportCSV(path)
	case "configure", "config":
		m.previousView = m.currentView
		m.currentView = ViewSetup
		m.setupView = m.newSetupView()
		m.setupView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		return m.setupView.Init()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case "quit", "q":
		return tea.Quit
	default:
		return nil
	}
}
