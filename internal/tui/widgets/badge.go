// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Provides colored inline badges, status icons and the session badge

package widgets

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/timizia/timizia-cli/internal/client"
	"github.com/timizia/timizia-cli/internal/tui/icons"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// expiringSoon is how close to exp an access token turns amber
const expiringSoon = 2 * time.Minute

var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

func colors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	default:
		return BadgeNeutralBg, BadgeNeutralFg
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := colors(level)

	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true)

	return style.Render(text)
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := colors(level)
	style := lipgloss.NewStyle().Foreground(bg)

	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := colors(level)
	return fmt.Sprintf("%s %s", StatusIcon(level), lipgloss.NewStyle().Foreground(bg).Render(text))
}

// SessionStatus classifies the locally stored session at now
func SessionStatus(info client.SessionInfo, now time.Time) (string, StatusLevel) {
	switch {
	case !info.SignedIn():
		return "Signed out", StatusNeutral
	case !info.HasAccessToken:
		return "Refresh pending", StatusWarning
	case info.Expired(now):
		if info.HasRefreshToken {
			return "Expired, will refresh", StatusWarning
		}
		return "Expired", StatusCritical
	case info.ExpiresAt == nil:
		return "Active", StatusInfo
	case info.ExpiresAt.Sub(now) <= expiringSoon:
		return "Expiring soon", StatusWarning
	default:
		return "Active", StatusOK
	}
}

// TokenBadge renders the session status as a badge
func TokenBadge(info client.SessionInfo, now time.Time) string {
	text, level := SessionStatus(info, now)
	return Badge(text, level)
}
