// ABOUTME: Welcome menu shown when no session is stored
// ABOUTME: Lets the user choose between logging in, signing up and resetting a password

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/timizia/timizia-cli/internal/tui/styles"
)

// Action represents the selected menu entry
type Action int

const (
	ActionLogin Action = iota
	ActionSignup
	ActionReset
	ActionQuit
)

// SelectedMsg is sent when the user confirms a menu entry
type SelectedMsg struct {
	Action Action
}

// CancelledMsg is sent when the user leaves the menu with esc or q
type CancelledMsg struct{}

type option struct {
	label string
	value Action
}

// Menu is the welcome screen as a bubbletea model
type Menu struct {
	options  []option
	selected Action
	form     *huh.Form
}

// New creates the welcome menu with "Log in" preselected
func New() *Menu {
	m := &Menu{
		options: []option{
			{label: "Log in", value: ActionLogin},
			{label: "Create an account", value: ActionSignup},
			{label: "Forgot password", value: ActionReset},
			{label: "Quit", value: ActionQuit},
		},
		selected: ActionLogin,
	}
	m.form = m.createForm()
	return m
}

func (m *Menu) createForm() *huh.Form {
	var options []huh.Option[Action]
	for _, opt := range m.options {
		options = append(options, huh.NewOption(opt.label, opt.value))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("Welcome to Timizia").
				Description("Learn at your own pace. Sign in to continue.").
				Options(options...).
				Value(&m.selected),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		action := m.selected
		// The menu is shown again after logout; start from a fresh form.
		m.form = m.createForm()
		return m, func() tea.Msg { return SelectedMsg{Action: action} }
	}

	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

// String returns the string representation of an Action
func (a Action) String() string {
	switch a {
	case ActionLogin:
		return "login"
	case ActionSignup:
		return "signup"
	case ActionReset:
		return "reset"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}
