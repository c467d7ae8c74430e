// ABOUTME: Register command for the timizia CLI
// ABOUTME: Creates an account without signing in

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
	registerName     string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new Timizia account. Registration does not sign you in;
run 'timizia login' afterwards.

The password must be at least 8 characters and include uppercase,
lowercase, a number and one of @$!%*?&. You are prompted for it when
--password is not given.`,
	Run: func(cmd *cobra.Command, args []string) {
		password, err := passwordFromFlagOrPrompt(registerPassword, "Password", validate.SignupPassword, true)
		if err != nil {
			exit(invalid(os.Stdout, err))
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		exit(runRegister(ctx, newClient(), os.Stdout, registerName, registerEmail, password))
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name (required)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address (required)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (prompted when omitted)")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(registerCmd)
}

// runRegister validates input, creates the account and returns exit code
func runRegister(ctx context.Context, c *client.Client, w io.Writer, name, email, password string) int {
	if err := validate.Name(name); err != nil {
		return invalid(w, err)
	}
	if err := validate.Email(email); err != nil {
		return invalid(w, err)
	}
	if err := validate.SignupPassword(password); err != nil {
		return invalid(w, err)
	}

	resp, err := c.Register(ctx, name, email, password)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(resp))
	} else {
		fmt.Fprintln(w, formatRegisterHuman(resp))
	}
	return exitOK
}

func formatRegisterHuman(resp *client.RegisterResponse) string {
	return fmt.Sprintf(`Account created for %s <%s>
Run 'timizia login --email %s' to sign in.`, resp.Name, resp.Email, resp.Email)
}
