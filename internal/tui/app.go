// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state, runs account requests and reacts to session end

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"github.com/timizia/timizia-cli/internal/client"
	"github.com/timizia/timizia-cli/internal/tui/dashboard"
	"github.com/timizia/timizia-cli/internal/tui/forms"
	"github.com/timizia/timizia-cli/internal/tui/icons"
	"github.com/timizia/timizia-cli/internal/tui/menu"
	"github.com/timizia/timizia-cli/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenWelcome Screen = iota
	ScreenLogin
	ScreenSignup
	ScreenResetPassword
	ScreenDashboard
	ScreenChangePassword
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
)

// Notices shown after a redirect
const (
	noticeAccountCreated  = "Account created. Log in to continue."
	noticePasswordReset   = "Password updated. Log in with your new password."
	noticeSessionExpired  = "Your session has expired. Please log in again."
	noticeSignedOut       = "You have been signed out."
	noticePasswordChanged = "Password changed."
	noticeReloadFailed    = "Could not reload account details."
)

// userLoadedMsg carries the best-effort current user lookup
type userLoadedMsg struct {
	user *client.User
	ok   bool
}

type loginDoneMsg struct {
	email string
	user  *client.User
	err   error
}

type signupDoneMsg struct {
	email string
	err   error
}

type resetDoneMsg struct {
	email string
	err   error
}

type changeDoneMsg struct {
	err error
}

type loggedOutMsg struct {
	err error
}

// sessionEndedMsg relays a client session-end event into the program
type sessionEndedMsg struct {
	reason client.SessionEnd
}

// App is the root model for the TUI
type App struct {
	ctx    context.Context
	client *client.Client
	events <-chan client.SessionEnd

	screen     Screen
	width      int
	height     int
	loading    bool
	notice     string
	user       *client.User
	lastUpdate time.Time
	banner     string

	// Child models
	spinner   spinner.Model
	menu      *menu.Menu
	form      *forms.Form
	dashboard *dashboard.Dashboard
}

// New creates a new TUI application. events delivers the client's
// session-end notifications and may be nil.
func New(ctx context.Context, apiClient *client.Client, events <-chan client.SessionEnd) *App {
	return &App{
		ctx:     ctx,
		client:  apiClient,
		events:  events,
		screen:  ScreenWelcome,
		loading: true,
		banner:  figure.NewFigure("timizia", "cybermedium", true).String(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
		menu: menu.New(),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.loadUser(), a.waitForSessionEnd())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.dashboard != nil {
			a.dashboard.SetSize(a.dashboardWidth(), a.contentHeight())
		}
		return a, a.forward(msg)

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.loading {
			return a, nil
		}

		if a.screen == ScreenDashboard {
			return a.updateDashboard(msg)
		}
		return a, a.forward(msg)

	case menu.SelectedMsg:
		return a.handleMenuSelected(msg)

	case menu.CancelledMsg:
		return a, tea.Quit

	case forms.SubmittedMsg:
		return a.handleSubmitted(msg)

	case forms.CancelledMsg:
		if msg.Kind == forms.KindChangePassword {
			return a, a.showDashboard()
		}
		return a, a.showWelcome("")

	case userLoadedMsg:
		return a.handleUserLoaded(msg)

	case loginDoneMsg:
		if msg.err != nil {
			return a, a.formError(msg.err)
		}
		a.user = msg.user
		a.notice = ""
		return a, a.showDashboard()

	case signupDoneMsg:
		if msg.err != nil {
			return a, a.formError(msg.err)
		}
		return a, a.showLogin(msg.email, noticeAccountCreated)

	case resetDoneMsg:
		if msg.err != nil {
			return a, a.formError(msg.err)
		}
		return a, a.showLogin(msg.email, noticePasswordReset)

	case changeDoneMsg:
		if msg.err != nil {
			return a, a.formError(msg.err)
		}
		a.notice = noticePasswordChanged
		return a, a.showDashboard()

	case loggedOutMsg:
		a.user = nil
		a.dashboard = nil
		notice := noticeSignedOut
		if msg.err != nil {
			notice = "Signed out, but stored credentials could not be removed: " + msg.err.Error()
		}
		return a, a.showWelcome(notice)

	case sessionEndedMsg:
		cmd := a.waitForSessionEnd()
		if msg.reason == client.SessionExpired {
			return a, tea.Batch(cmd, a.expire())
		}
		return a, cmd

	default:
		// Forward unknown messages to the active form (needed for huh internals)
		return a, a.forward(msg)
	}

	return a, nil
}

// forward passes msg to the child model of the current screen
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenWelcome:
		if a.menu != nil {
			_, cmd = a.menu.Update(msg)
		}
	case ScreenLogin, ScreenSignup, ScreenResetPassword, ScreenChangePassword:
		if a.form != nil {
			_, cmd = a.form.Update(msg)
		}
	}
	return cmd
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		a.loading = true
		a.notice = ""
		return a, tea.Batch(a.spinner.Tick, a.loadUser())
	case "p":
		if a.user != nil {
			return a, a.showForm(ScreenChangePassword, forms.NewChangePassword(a.user.Email))
		}
	case "l":
		a.loading = true
		return a, tea.Batch(a.spinner.Tick, a.logout())
	}
	return a, nil
}

func (a *App) handleMenuSelected(msg menu.SelectedMsg) (tea.Model, tea.Cmd) {
	a.notice = ""
	switch msg.Action {
	case menu.ActionLogin:
		return a, a.showLogin("", "")
	case menu.ActionSignup:
		return a, a.showForm(ScreenSignup, forms.NewSignup())
	case menu.ActionReset:
		return a, a.showForm(ScreenResetPassword, forms.NewReset())
	default:
		return a, tea.Quit
	}
}

func (a *App) handleSubmitted(msg forms.SubmittedMsg) (tea.Model, tea.Cmd) {
	v := msg.Values

	var cmd tea.Cmd
	switch msg.Kind {
	case forms.KindLogin:
		cmd = a.login(v.Email, v.Password)
	case forms.KindSignup:
		cmd = a.register(v.Name, v.Email, v.Password)
	case forms.KindReset:
		cmd = a.resetPassword(v.Email, v.Password)
	case forms.KindChangePassword:
		cmd = a.changePassword(v.Email, v.Current, v.Password)
	default:
		return a, nil
	}
	return a, tea.Batch(a.spinner.Tick, cmd)
}

func (a *App) handleUserLoaded(msg userLoadedMsg) (tea.Model, tea.Cmd) {
	a.loading = false

	if msg.ok {
		a.user = msg.user
		return a, a.showDashboard()
	}

	switch {
	case a.screen == ScreenLogin:
		// An expiry already redirected to the login form
		return a, nil
	case a.user == nil:
		return a, a.showWelcome("")
	case a.client.Session().SignedIn():
		a.notice = noticeReloadFailed
		return a, nil
	default:
		return a, a.expire()
	}
}

// formError shows err on the active form. An expired session redirects
// to the login form instead.
func (a *App) formError(err error) tea.Cmd {
	if errors.Is(err, client.ErrSessionExpired) {
		return a.expire()
	}
	if a.form == nil {
		return nil
	}
	return a.form.SetError(userFacing(err))
}

// userFacing reduces backend errors to their message
func userFacing(err error) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return errors.New(httpErr.Message)
	}
	return err
}

// expire drops the signed-in state and shows the login form once
func (a *App) expire() tea.Cmd {
	if a.screen == ScreenLogin && a.user == nil {
		return nil
	}

	email := ""
	if a.user != nil {
		email = a.user.Email
	}
	a.user = nil
	a.dashboard = nil
	a.loading = false
	return a.showLogin(email, noticeSessionExpired)
}

func (a *App) showWelcome(notice string) tea.Cmd {
	a.screen = ScreenWelcome
	a.form = nil
	a.loading = false
	a.notice = notice
	a.menu = menu.New()
	return a.menu.Init()
}

func (a *App) showLogin(email, notice string) tea.Cmd {
	return a.showForm(ScreenLogin, forms.NewLogin(email, notice))
}

func (a *App) showForm(screen Screen, f *forms.Form) tea.Cmd {
	a.screen = screen
	a.form = f
	a.loading = false
	return f.Init()
}

func (a *App) showDashboard() tea.Cmd {
	a.screen = ScreenDashboard
	a.form = nil
	a.loading = false
	a.lastUpdate = time.Now()

	session := a.client.Session()
	if a.dashboard == nil {
		a.dashboard = dashboard.New(a.user, session, a.dashboardWidth(), a.contentHeight())
	} else {
		a.dashboard.Update(a.user, session)
	}
	return nil
}

// busy reports whether a request is in flight
func (a *App) busy() bool {
	return a.loading || (a.form != nil && a.form.Busy())
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch {
	case a.loading:
		content = a.viewLoading()
	case a.screen == ScreenWelcome:
		content = a.viewWelcome()
	case a.screen == ScreenDashboard:
		content = a.viewDashboard()
	default:
		content = a.viewForm()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewLoading() string {
	label := "Checking session..."
	if a.user != nil {
		label = "Working..."
	}
	return fmt.Sprintf("\n %s %s\n", a.spinner.View(), label)
}

// viewWelcome renders the banner and the welcome menu
func (a *App) viewWelcome() string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render(a.banner))
	sb.WriteString("\n")
	if a.notice != "" {
		sb.WriteString(styles.Notice.Render(icons.Info.String() + " " + a.notice))
		sb.WriteString("\n")
	}
	if a.menu != nil {
		sb.WriteString(a.menu.View())
	}
	return sb.String()
}

func (a *App) viewForm() string {
	if a.form == nil {
		return ""
	}
	if a.form.Busy() {
		return fmt.Sprintf("\n %s %s\n", a.spinner.View(), a.form.View())
	}
	return a.form.View()
}

// viewDashboard renders the account pane with the actions pane
func (a *App) viewDashboard() string {
	leftContent := "Loading account..."
	if a.dashboard != nil {
		leftContent = a.dashboard.View()
	}
	if a.notice != "" {
		leftContent = styles.Notice.Render(icons.Info.String()+" "+a.notice) + "\n" + leftContent
	}
	leftPane := styles.ActivePanel.Width(a.dashboardWidth()).Render(leftContent)

	rightContent := styles.Title.Render("Actions") + "\n\n"
	rightContent += icons.Lock.String() + " Change password\n"
	rightContent += icons.Refresh.String() + " Reload account\n"
	rightContent += icons.Logout.String() + " Log out\n"
	rightContent += icons.Quit.String() + " Quit application\n"
	rightPane := styles.Panel.Width(a.actionsWidth()).Render(rightContent)

	if a.width < minTerminalWidth {
		return lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// dashboardWidth calculates the width for the account pane
func (a *App) dashboardWidth() int {
	if a.width < minTerminalWidth {
		return a.frameWidth() - panelPadding
	}
	return (a.width - panelPadding) / 2
}

// actionsWidth calculates the width for the actions pane
func (a *App) actionsWidth() int {
	if a.width < minTerminalWidth {
		return a.dashboardWidth()
	}
	return a.width - a.dashboardWidth() - 2*panelPadding
}

// contentHeight calculates the height available between header and footer
func (a *App) contentHeight() int {
	// header, newline, panel border+padding (4), newline, footer
	return a.height - 8
}

// frameWidth is the terminal width minus one column, never below the
// minimum, so the frame does not wrap on terminals that reserve the last column
func (a *App) frameWidth() int {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftRendered := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Timizia"))

	rightRendered := ""
	if a.user != nil && (a.screen == ScreenDashboard || a.screen == ScreenChangePassword) {
		rightRendered = " " + contextStyle.Render(icons.User.String()+" "+a.user.Email) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftRendered + strings.Repeat("─", fillWidth) + rightRendered + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch {
	case a.loading:
		shortcuts = []string{"ctrl+c Quit"}
	case a.screen == ScreenWelcome:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case a.screen == ScreenDashboard:
		shortcuts = []string{"p Password", "r Reload", "l Logout", "q Quit"}
	case a.screen == ScreenChangePassword:
		shortcuts = []string{"Tab Next", "Enter Submit", "Esc Cancel"}
	default:
		shortcuts = []string{"Tab Next", "Enter Submit", "Esc Back"}
	}

	var styled []string
	for _, s := range shortcuts {
		key, label, found := strings.Cut(s, " ")
		if found {
			styled = append(styled, styles.KeyStyle.Render(key)+" "+labelStyle.Render(label))
		} else {
			styled = append(styled, s)
		}
	}

	leftText := " " + strings.Join(styled, "  ") + " "
	leftPlainText := " " + strings.Join(shortcuts, "  ") + " "

	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && a.screen == ScreenDashboard && !a.loading {
		elapsed := formatTimeSince(a.lastUpdate, time.Now())
		rightText = " " + statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = " Updated " + elapsed + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftPlainText) - lipgloss.Width(rightPlainText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// formatTimeSince formats the time elapsed between t and now
func formatTimeSince(t, now time.Time) string {
	d := now.Sub(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// loadUser resolves the signed-in user, if any
func (a *App) loadUser() tea.Cmd {
	return func() tea.Msg {
		user, ok := a.client.CurrentUser(a.ctx)
		return userLoadedMsg{user: user, ok: ok}
	}
}

func (a *App) login(email, password string) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.client.Login(a.ctx, email, password); err != nil {
			return loginDoneMsg{email: email, err: err}
		}
		user, ok := a.client.CurrentUser(a.ctx)
		if !ok {
			user = &client.User{Email: email}
		}
		return loginDoneMsg{email: email, user: user}
	}
}

func (a *App) register(name, email, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := a.client.Register(a.ctx, name, email, password)
		return signupDoneMsg{email: email, err: err}
	}
}

func (a *App) resetPassword(email, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := a.client.ResetPassword(a.ctx, email, password)
		return resetDoneMsg{email: email, err: err}
	}
}

func (a *App) changePassword(email, current, next string) tea.Cmd {
	return func() tea.Msg {
		_, err := a.client.ChangePassword(a.ctx, email, current, next)
		return changeDoneMsg{err: err}
	}
}

func (a *App) logout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: a.client.Logout()}
	}
}

// waitForSessionEnd blocks until the client reports a session end
func (a *App) waitForSessionEnd() tea.Cmd {
	if a.events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case reason, ok := <-a.events:
			if !ok {
				return nil
			}
			return sessionEndedMsg{reason: reason}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// Run starts the TUI application and blocks until it exits
func Run(ctx context.Context, apiClient *client.Client, events <-chan client.SessionEnd) error {
	p := tea.NewProgram(
		New(ctx, apiClient, events),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
