// ABOUTME: Interactive prompts for secrets that should not be passed as flags
// ABOUTME: Uses huh masked inputs with inline validation

package cmd

import (
	"github.com/charmbracelet/huh"

	"github.com/timizia/timizia-cli/internal/validate"
)

// promptPassword asks for a masked password, optionally with confirmation
func promptPassword(title string, check func(string) error, confirm bool) (string, error) {
	var password, confirmation string

	fields := []huh.Field{
		huh.NewInput().
			Title(title).
			EchoMode(huh.EchoModePassword).
			Validate(check).
			Value(&password),
	}
	if confirm {
		fields = append(fields, huh.NewInput().
			Title("Confirm password").
			EchoMode(huh.EchoModePassword).
			Validate(func(s string) error {
				return validate.Confirm(password, s)
			}).
			Value(&confirmation))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return "", err
	}
	return password, nil
}

// passwordFromFlagOrPrompt returns flagValue when set, otherwise prompts
func passwordFromFlagOrPrompt(flagValue, title string, check func(string) error, confirm bool) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return promptPassword(title, check, confirm)
}
