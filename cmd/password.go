// ABOUTME: Password commands for the timizia CLI
// ABOUTME: reset-password is anonymous, change-password requires a session

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/timizia/timizia-cli/internal/client"
	"github.com/timizia/timizia-cli/internal/validate"
)

var errNotSignedIn = errors.New("not signed in, run 'timizia login' first")

var (
	resetEmail    string
	resetPassword string

	changeEmail   string
	changeCurrent string
	changeNew     string
)

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password for an account",
	Run: func(cmd *cobra.Command, args []string) {
		password, err := passwordFromFlagOrPrompt(resetPassword, "New password", validate.NewPassword, true)
		if err != nil {
			exit(invalid(os.Stdout, err))
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		exit(runResetPassword(ctx, newClient(), os.Stdout, resetEmail, password))
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the signed-in account",
	Long: `Change the password of the signed-in account. The email defaults to
the current user's email.`,
	Run: func(cmd *cobra.Command, args []string) {
		current, err := passwordFromFlagOrPrompt(changeCurrent, "Current password", validate.LoginPassword, false)
		if err != nil {
			exit(invalid(os.Stdout, err))
			return
		}
		next, err := passwordFromFlagOrPrompt(changeNew, "New password", validate.NewPassword, true)
		if err != nil {
			exit(invalid(os.Stdout, err))
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		exit(runChangePassword(ctx, newClient(), os.Stdout, changeEmail, current, next))
	},
}

func init() {
	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "Account email (required)")
	resetPasswordCmd.Flags().StringVar(&resetPassword, "password", "", "New password (prompted when omitted)")
	resetPasswordCmd.MarkFlagRequired("email")

	changePasswordCmd.Flags().StringVar(&changeEmail, "email", "", "Account email (default: current user)")
	changePasswordCmd.Flags().StringVar(&changeCurrent, "current", "", "Current password (prompted when omitted)")
	changePasswordCmd.Flags().StringVar(&changeNew, "new", "", "New password (prompted when omitted)")

	rootCmd.AddCommand(resetPasswordCmd)
	rootCmd.AddCommand(changePasswordCmd)
}

// runResetPassword validates and submits a password reset
func runResetPassword(ctx context.Context, c *client.Client, w io.Writer, email, password string) int {
	if err := validate.Email(email); err != nil {
		return invalid(w, err)
	}
	if err := validate.NewPassword(password); err != nil {
		return invalid(w, err)
	}

	resp, err := c.ResetPassword(ctx, email, password)
	if err != nil {
		return fail(w, err)
	}
	return printPasswordResult(w, "Password reset", resp)
}

// runChangePassword changes the password, resolving the email from the
// session when not given
func runChangePassword(ctx context.Context, c *client.Client, w io.Writer, email, current, next string) int {
	if email == "" {
		user, ok := c.CurrentUser(ctx)
		if !ok {
			return fail(w, errNotSignedIn)
		}
		email = user.Email
	}

	if err := validate.Email(email); err != nil {
		return invalid(w, err)
	}
	if current == "" {
		return invalid(w, validate.ErrPasswordRequired)
	}
	if err := validate.NewPassword(next); err != nil {
		return invalid(w, err)
	}

	resp, err := c.ChangePassword(ctx, email, current, next)
	if err != nil {
		return fail(w, err)
	}
	return printPasswordResult(w, "Password changed", resp)
}

func printPasswordResult(w io.Writer, action string, resp *client.EmailResponse) int {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(resp))
	} else {
		fmt.Fprintf(w, "%s for %s\n", action, resp.Email)
	}
	return exitOK
}
