// ABOUTME: Users commands for the timizia CLI
// ABOUTME: Lists users page by page and fetches a single user by id

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timizia/timizia-cli/internal/client"
)

var usersPage int

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Browse platform users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		exit(runUsersList(ctx, newClient(), os.Stdout, usersPage))
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a user by id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		exit(runUsersGet(ctx, newClient(), os.Stdout, args[0]))
	},
}

func init() {
	usersListCmd.Flags().IntVar(&usersPage, "page", 1, "Page number, starting at 1")
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)
	rootCmd.AddCommand(usersCmd)
}

// runUsersList prints one page of users
func runUsersList(ctx context.Context, c *client.Client, w io.Writer, page int) int {
	if page < 1 {
		return invalid(w, fmt.Errorf("page must be 1 or greater, got %d", page))
	}

	resp, err := c.Users(ctx, page)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(resp))
	} else {
		fmt.Fprintln(w, formatUsersHuman(resp, page))
	}
	return exitOK
}

func formatUsersHuman(resp *client.UserPage, page int) string {
	if len(resp.Results) == 0 {
		return "No users."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-32s %s\n", "NAME", "EMAIL", "USERNAME")
	for _, u := range resp.Results {
		fmt.Fprintf(&b, "%-24s %-32s %s\n", u.Name, u.Email, u.Username)
	}
	fmt.Fprintf(&b, "\nPage %d, %d users total", page, resp.Count)
	if resp.Next != nil {
		fmt.Fprintf(&b, " (next: --page %d)", page+1)
	}
	return b.String()
}

// runUsersGet prints a single user
func runUsersGet(ctx context.Context, c *client.Client, w io.Writer, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid(w, fmt.Errorf("user id is required"))
	}

	user, err := c.UserByID(ctx, id)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(user))
	} else {
		fmt.Fprintln(w, formatUserHuman(user))
	}
	return exitOK
}
