// ABOUTME: Account forms (login, sign-up, reset, change password) as bubbletea models
// ABOUTME: Validates input inline with huh and reports submissions to the app as messages

package forms

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/timizia/timizia-cli/internal/tui/icons"
	"github.com/timizia/timizia-cli/internal/tui/styles"
	"github.com/timizia/timizia-cli/internal/validate"
)

// Kind identifies which account flow a form drives
type Kind int

const (
	KindLogin Kind = iota
	KindSignup
	KindReset
	KindChangePassword
)

func (k Kind) String() string {
	switch k {
	case KindLogin:
		return "login"
	case KindSignup:
		return "signup"
	case KindReset:
		return "reset"
	case KindChangePassword:
		return "change-password"
	default:
		return "unknown"
	}
}

// Values holds the collected field values. Unused fields stay empty.
type Values struct {
	Name     string
	Email    string
	Current  string
	Password string
	Confirm  string
}

// SubmittedMsg is sent when every field passed validation
type SubmittedMsg struct {
	Kind   Kind
	Values Values
}

// CancelledMsg is sent when the user leaves the form with esc
type CancelledMsg struct {
	Kind Kind
}

// Form is one account flow rendered as a huh form
type Form struct {
	kind   Kind
	values Values
	form   *huh.Form
	notice string
	errMsg string
	busy   bool
}

// NewLogin creates the login form. email prefills the address; notice is
// shown above the form (e.g. after sign-up or an expired session).
func NewLogin(email, notice string) *Form {
	return newForm(KindLogin, Values{Email: email}, notice)
}

// NewSignup creates the account creation form
func NewSignup() *Form {
	return newForm(KindSignup, Values{}, "")
}

// NewReset creates the password reset form
func NewReset() *Form {
	return newForm(KindReset, Values{}, "")
}

// NewChangePassword creates the change-password form for the signed-in email
func NewChangePassword(email string) *Form {
	return newForm(KindChangePassword, Values{Email: email}, "")
}

func newForm(kind Kind, values Values, notice string) *Form {
	f := &Form{kind: kind, values: values, notice: notice}
	f.form = f.build()
	return f
}

// Kind returns the flow this form drives
func (f *Form) Kind() Kind {
	return f.kind
}

// Busy reports whether a submission is in flight
func (f *Form) Busy() bool {
	return f.busy
}

// SetError shows a backend error above a fresh copy of the form. Entered
// passwords are cleared; name and email are kept.
func (f *Form) SetError(err error) tea.Cmd {
	f.busy = false
	f.errMsg = ""
	if err != nil {
		f.errMsg = err.Error()
	}
	f.values.Current = ""
	f.values.Password = ""
	f.values.Confirm = ""
	f.form = f.build()
	return f.form.Init()
}

func (f *Form) build() *huh.Form {
	var group *huh.Group

	switch f.kind {
	case KindSignup:
		group = huh.NewGroup(
			huh.NewInput().
				Title("Full name").
				Placeholder("Ada Lovelace").
				Value(&f.values.Name).
				Validate(validate.Name),
			f.emailInput(),
			f.passwordInput("Password", &f.values.Password, validate.SignupPassword).
				Description("8+ characters with upper and lower case, a number and one of @$!%*?&"),
			f.confirmInput(),
		).Title(icons.User.String() + " Create an account")

	case KindReset:
		group = huh.NewGroup(
			f.emailInput(),
			f.passwordInput("New password", &f.values.Password, validate.NewPassword).
				Description("At least 8 characters with upper and lower case and a number or symbol"),
			f.confirmInput(),
		).Title(icons.Key.String() + " Create a new password")

	case KindChangePassword:
		group = huh.NewGroup(
			f.passwordInput("Current password", &f.values.Current, required),
			f.passwordInput("New password", &f.values.Password, validate.NewPassword).
				Description("At least 8 characters with upper and lower case and a number or symbol"),
			f.confirmInput(),
		).Title(icons.Lock.String() + " Change password").
			Description(f.values.Email)

	default:
		group = huh.NewGroup(
			f.emailInput(),
			f.passwordInput("Password", &f.values.Password, validate.LoginPassword),
		).Title(icons.Email.String() + " Log in")
	}

	return huh.NewForm(group).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (f *Form) emailInput() *huh.Input {
	return huh.NewInput().
		Title("Email").
		Placeholder("you@example.com").
		Value(&f.values.Email).
		Validate(func(s string) error {
			return validate.Email(strings.TrimSpace(s))
		})
}

func (f *Form) passwordInput(title string, value *string, check func(string) error) *huh.Input {
	return huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(value).
		Validate(check)
}

func (f *Form) confirmInput() *huh.Input {
	return huh.NewInput().
		Title("Confirm password").
		EchoMode(huh.EchoModePassword).
		Value(&f.values.Confirm).
		Validate(func(s string) error {
			return validate.Confirm(f.values.Password, s)
		})
}

func required(s string) error {
	if s == "" {
		return validate.ErrPasswordRequired
	}
	return nil
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if f.busy {
		return f, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		kind := f.kind
		return f, func() tea.Msg { return CancelledMsg{Kind: kind} }
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.busy = true
		f.errMsg = ""
		submitted := SubmittedMsg{Kind: f.kind, Values: f.values}
		submitted.Values.Email = strings.TrimSpace(submitted.Values.Email)
		return f, func() tea.Msg { return submitted }
	}

	return f, cmd
}

// View implements tea.Model
func (f *Form) View() string {
	if f.busy {
		return lipgloss.NewStyle().Foreground(styles.Muted).Render("Submitting...")
	}

	var sb strings.Builder

	if f.notice != "" {
		sb.WriteString(styles.Notice.Render(icons.Info.String() + " " + f.notice))
		sb.WriteString("\n")
	}
	if f.errMsg != "" {
		sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + f.errMsg))
		sb.WriteString("\n\n")
	}

	sb.WriteString(f.form.View())
	return sb.String()
}
