// ABOUTME: Entry point for the timizia CLI
// ABOUTME: Account and session management for the Timizia learning platform

package main

import (
	"fmt"
	"os"

	"github.com/timizia/timizia-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
