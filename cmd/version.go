// ABOUTME: Version command for the timizia CLI
// ABOUTME: Prints the banner and build version

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		exit(runVersion(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(w io.Writer) int {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]string{"version": Version}))
		return exitOK
	}

	fmt.Fprintln(w, figure.NewFigure("timizia", "cybermedium", true).String())
	fmt.Fprintf(w, "timizia %s\n", Version)
	return exitOK
}
