// ABOUTME: Account dashboard shown after sign-in
// ABOUTME: Greets the user and shows the profile and local session state

package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/timizia/timizia-cli/internal/client"
	"github.com/timizia/timizia-cli/internal/tui/icons"
	"github.com/timizia/timizia-cli/internal/tui/styles"
	"github.com/timizia/timizia-cli/internal/tui/widgets"
)

// Dashboard displays the signed-in account
type Dashboard struct {
	user    *client.User
	session client.SessionInfo
	width   int
	height  int
	now     func() time.Time
}

// New creates a dashboard for user and the current session
func New(user *client.User, session client.SessionInfo, width, height int) *Dashboard {
	return &Dashboard{
		user:    user,
		session: session,
		width:   width,
		height:  height,
		now:     time.Now,
	}
}

// Update replaces the displayed account and session
func (d *Dashboard) Update(user *client.User, session client.SessionInfo) {
	d.user = user
	d.session = session
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// User returns the displayed account
func (d *Dashboard) User() *client.User {
	return d.user
}

// Greeting returns the headline for the account
func Greeting(user *client.User) string {
	if user == nil {
		return "Welcome back"
	}
	name := strings.TrimSpace(user.Name)
	if name == "" {
		name = user.Username
	}
	if name == "" {
		return "Welcome back"
	}
	first, _, _ := strings.Cut(name, " ")
	return "Welcome back, " + first
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.user == nil {
		return styles.Panel.Width(d.width).Render("Loading account...")
	}

	var sb strings.Builder

	sb.WriteString(styles.Title.Render(Greeting(d.user)))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Continue where you left off"))
	sb.WriteString("\n")

	sb.WriteString(d.row(icons.User, "Name", d.user.Name))
	sb.WriteString(d.row(icons.Email, "Email", d.user.Email))
	if d.user.Username != "" {
		sb.WriteString(d.row(icons.User, "Username", d.user.Username))
	}
	if d.user.ID != "" {
		sb.WriteString(d.row(icons.Key, "ID", d.user.ID.String()))
	}
	sb.WriteString("\n")

	sb.WriteString(styles.Title.Render("Session"))
	sb.WriteString("\n")
	sb.WriteString(widgets.TokenBadge(d.session, d.now()))
	sb.WriteString("\n")
	if d.session.ExpiresAt != nil {
		sb.WriteString(d.row(icons.Clock, "Expires", d.session.ExpiresAt.Local().Format(time.Kitchen)))
	}

	return sb.String()
}

func (d *Dashboard) row(icon icons.Icon, label, value string) string {
	if value == "" {
		value = lipgloss.NewStyle().Foreground(styles.Muted).Render("-")
	}
	return fmt.Sprintf("%s %s %s\n", icon.String(), styles.Label.Render(label), styles.ValueStyle.Render(value))
}
