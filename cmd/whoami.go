// ABOUTME: Whoami and session commands for the timizia CLI
// ABOUTME: whoami asks the backend, session only inspects local credentials

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/timizia/timizia-cli/internal/client"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		exit(runWhoami(ctx, newClient(), os.Stdout))
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show locally stored session details",
	Long: `Show what the stored credentials contain without contacting the backend.
Expiry is read from the unverified token and is informational only.`,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runSession(newClient(), os.Stdout, time.Now()))
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(sessionCmd)
}

// runWhoami resolves the current user; absent means not signed in
func runWhoami(ctx context.Context, c *client.Client, w io.Writer) int {
	user, ok := c.CurrentUser(ctx)
	if !ok {
		return fail(w, errNotSignedIn)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(user))
	} else {
		fmt.Fprintln(w, formatUserHuman(user))
	}
	return exitOK
}

func formatUserHuman(u *client.User) string {
	return fmt.Sprintf(`Name:     %s
Email:    %s
Username: %s
ID:       %s`, u.Name, u.Email, u.Username, u.ID)
}

// runSession prints local session status; exit 1 when nothing is stored
func runSession(c *client.Client, w io.Writer, now time.Time) int {
	info := c.Session()

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(struct {
			client.SessionInfo
			SignedIn bool `json:"signed_in"`
			Expired  bool `json:"expired"`
		}{info, info.SignedIn(), info.Expired(now)}))
	} else {
		fmt.Fprintln(w, formatSessionHuman(info, now))
	}

	if !info.SignedIn() {
		return exitRejected
	}
	return exitOK
}

func formatSessionHuman(info client.SessionInfo, now time.Time) string {
	if !info.SignedIn() {
		return "Not signed in."
	}

	userID := info.UserID
	if userID == "" {
		userID = "unknown"
	}

	return fmt.Sprintf(`Signed in:     yes
User ID:       %s
Access token:  %s
Refresh token: %s`, userID, accessTokenStatus(info, now), presence(info.HasRefreshToken))
}

func accessTokenStatus(info client.SessionInfo, now time.Time) string {
	switch {
	case !info.HasAccessToken:
		return "missing"
	case info.ExpiresAt == nil:
		return "present"
	case info.Expired(now):
		return fmt.Sprintf("expired %s ago (refreshed on next request)", now.Sub(*info.ExpiresAt).Round(time.Second))
	default:
		return fmt.Sprintf("valid for %s", info.ExpiresAt.Sub(now).Round(time.Second))
	}
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
