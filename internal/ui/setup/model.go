// Package setup implements the IMAP account setup form.
package setup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tkiley/jobtrail/internal/credential"
	"github.com/tkiley/jobtrail/internal/model"
	"github.com/tkiley/jobtrail/internal/theme"
)

// SetupMode represents the current state of the setup view.
type SetupMode int

const (
	ModeForm           SetupMode = iota // Account form
	ModeValidating                      // Testing connection
	ModeValidateResult                  // Show validation result
)

// DoneMsg signals the setup view should close. Saved reports whether a
// working account was stored.
type DoneMsg struct {
	Saved bool
}

// ValidateResultMsg carries the result of a connection test.
type ValidateResultMsg struct {
	Username string
	Err      error
}

// Validator tests an account's credentials against the IMAP server and
// returns the authenticated username.
type Validator func(ctx context.Context, account model.AccountConfig, password string) (string, error)

// Saver persists a validated account configuration.
type Saver func(account model.AccountConfig) error

// validateTimeout bounds the connection test.
const validateTimeout = 30 * time.Second

// Model is the Bubble Tea model for the account setup form.
type Model struct {
	mode SetupMode

	form    *huh.Form
	spinner spinner.Model

	// Form field values (huh binds to these)
	formHost     string
	formPort     string
	formUsername string
	formPassword string
	formMailbox  string
	formTLS      bool

	validate Validator
	save     Saver

	validUser string
	validErr  error
	statusMsg string

	width, height int
}

// New creates a setup model. Existing account settings pre-fill the form.
func New(account model.AccountConfig, validate Validator, save Saver, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		mode:         ModeForm,
		spinner:      sp,
		formHost:     account.Host,
		formPort:     account.Port,
		formUsername: account.Username,
		formMailbox:  account.Mailbox,
		formTLS:      account.TLS || !account.Configured(),
		validate:     validate,
		save:         save,
		width:        width,
		height:       height,
	}

	if m.formPort == "" {
		m.formPort = "993"
	}
	if m.formMailbox == "" {
		m.formMailbox = "[Gmail]/All Mail"
	}

	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// buildForm constructs the huh form bound to the model's field values.
func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP Host").
				Description("IMAP server hostname").
				Placeholder("imap.gmail.com").
				Value(&m.formHost).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Description("IMAP server port (e.g., 993)").
				Placeholder("993").
				Value(&m.formPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Description("Email account username").
				Placeholder("user@example.com").
				Value(&m.formUsername).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Account password or app password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword).
				Validate(validateRequired("Password")),
			huh.NewInput().
				Title("Mailbox").
				Description("Mailbox to scan for application emails").
				Placeholder("[Gmail]/All Mail").
				Value(&m.formMailbox).
				Validate(validateRequired("Mailbox")),
			huh.NewConfirm().
				Title("Use TLS").
				Description("Enable TLS encryption for connections").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formTLS),
		),
	).WithWidth(m.formWidth())
}

// account builds an AccountConfig from the current form values.
func (m Model) account() model.AccountConfig {
	return model.AccountConfig{
		Host:     strings.TrimSpace(m.formHost),
		Port:     strings.TrimSpace(m.formPort),
		Username: strings.TrimSpace(m.formUsername),
		Mailbox:  strings.TrimSpace(m.formMailbox),
		TLS:      m.formTLS,
	}
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ValidateResultMsg:
		m.validUser = msg.Username
		m.validErr = msg.Err
		m.mode = ModeValidateResult

		if msg.Err == nil {
			account := m.account()
			if err := credential.SetPassword(account.Username, m.formPassword); err != nil {
				m.validErr = fmt.Errorf("storing password: %w", err)
				return m, nil
			}
			if err := m.save(account); err != nil {
				m.validErr = fmt.Errorf("saving account: %w", err)
				return m, nil
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateForm(msg)
}

// handleKeyMsg processes key messages based on the current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeForm:
		return m.updateForm(msg)

	case ModeValidating:
		// Only allow escape during validation
		if msg.String() == "esc" {
			m.mode = ModeForm
			return m, nil
		}
		return m, nil

	case ModeValidateResult:
		switch msg.String() {
		case "r":
			if m.validErr != nil {
				m.mode = ModeForm
				m.form = m.buildForm()
				return m, m.form.Init()
			}
		case "enter", "esc":
			saved := m.validErr == nil
			return m, func() tea.Msg {
				return DoneMsg{Saved: saved}
			}
		}
		return m, nil
	}
	return m, nil
}

// updateForm advances the huh form and reacts to its terminal states.
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.testConnection())
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg {
			return DoneMsg{Saved: false}
		}
	}

	return m, cmd
}

// testConnection returns a command that validates the account against
// the IMAP server.
func (m Model) testConnection() tea.Cmd {
	account := m.account()
	password := m.formPassword
	validate := m.validate

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
		defer cancel()

		username, err := validate(ctx, account, password)
		return ValidateResultMsg{Username: username, Err: err}
	}
}

// View renders the setup UI based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		return m.viewForm()
	case ModeValidating:
		return m.viewValidating()
	case ModeValidateResult:
		return m.viewValidateResult()
	default:
		return ""
	}
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Account Setup"),
		m.form.View(),
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m Model) viewValidating() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	content := fmt.Sprintf(
		"%s Testing connection...\n\nPress esc to cancel.",
		m.spinner.View(),
	)

	return style.Render(content)
}

func (m Model) viewValidateResult() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	var content string
	if m.validErr != nil {
		errStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorRed)
		content = errStyle.Render("Connection failed") + "\n\n" +
			m.validErr.Error() + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.ColorGray).
				Render("r retry | enter/esc back")
	} else {
		okStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorGreen)
		displayName := m.validUser
		if displayName == "" {
			displayName = "OK"
		}
		content = okStyle.Render("Connection successful") + "\n\n" +
			fmt.Sprintf("Authenticated as: %s", displayName) + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.ColorGray).
				Render("enter/esc continue")
	}

	return style.Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}
