// ABOUTME: Login and logout commands for the timizia CLI
// ABOUTME: Stores or clears credentials through the session client

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/timizia/timizia-cli/internal/client"
	"github.com/timizia/timizia-cli/internal/validate"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Long:  `Sign in with email and password. Tokens are stored in the config directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		password, err := passwordFromFlagOrPrompt(loginPassword, "Password", validate.LoginPassword, false)
		if err != nil {
			exit(invalid(os.Stdout, err))
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		exit(runLogin(ctx, newClient(), os.Stdout, loginEmail, password))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and erase stored credentials",
	Run: func(cmd *cobra.Command, args []string) {
		exit(runLogout(newClient(), os.Stdout))
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
	loginCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

// runLogin signs in and reports the resolved user
func runLogin(ctx context.Context, c *client.Client, w io.Writer, email, password string) int {
	if err := validate.Email(email); err != nil {
		return invalid(w, err)
	}
	if err := validate.LoginPassword(password); err != nil {
		return invalid(w, err)
	}

	if _, err := c.Login(ctx, email, password); err != nil {
		return fail(w, err)
	}

	// Identity lookup is best effort; a missing user does not undo the login.
	user, _ := c.CurrentUser(ctx)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]interface{}{
			"signed_in": true,
			"email":     email,
			"user":      user,
		}))
	} else {
		fmt.Fprintln(w, formatLoginHuman(email, user))
	}
	return exitOK
}

func formatLoginHuman(email string, user *client.User) string {
	if user == nil {
		return fmt.Sprintf("Signed in as %s", email)
	}
	return fmt.Sprintf("Signed in as %s <%s>", displayName(user), user.Email)
}

// runLogout clears credentials; it never contacts the backend
func runLogout(c *client.Client, w io.Writer) int {
	if err := c.Logout(); err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]bool{"signed_in": false}))
	} else {
		fmt.Fprintln(w, "Signed out.")
	}
	return exitOK
}

// displayName prefers the full name, then username, then email
func displayName(u *client.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}
