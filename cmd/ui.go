// ABOUTME: Interactive TUI command for the timizia CLI
// ABOUTME: Logs to the debug file and relays session-end events into the TUI

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timizia/timizia-cli/internal/client"
	"github.com/timizia/timizia-cli/internal/logger"
	"github.com/timizia/timizia-cli/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal UI for signing in, creating an account,
resetting a password and viewing the signed-in account.

Logs are written to debug.log in the config directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		c := currentConfig()

		logFile, err := logger.OpenFile(c.ConfigDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot open debug log: %v\n", err)
			exit(exitError)
			return
		}
		defer logFile.Close()

		events := make(chan client.SessionEnd, 4)
		apiClient := newClient(
			client.WithLogger(logger.New(c.LogLevel, c.LogFormat, logFile)),
			client.WithSessionEndHandler(relaySessionEnd(events)),
		)

		ctx, cancel := commandContext()
		defer cancel()

		if err := tui.Run(ctx, apiClient, events); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(exitError)
		}
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

// relaySessionEnd forwards client notifications without ever blocking the
// request path; a full buffer drops the event
func relaySessionEnd(events chan<- client.SessionEnd) func(client.SessionEnd) {
	return func(reason client.SessionEnd) {
		select {
		case events <- reason:
		default:
		}
	}
}
