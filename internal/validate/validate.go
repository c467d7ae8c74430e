// ABOUTME: Input validation for account forms and command flags
// ABOUTME: Enforces the sign-up, login and new-password rules before any request is sent

package validate

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

// MinPasswordLength applies to every password rule
const MinPasswordLength = 8

// passwordSymbols are the special characters accepted at sign-up
const passwordSymbols = "@$!%*?&"

var (
	ErrNameRequired      = errors.New("Full name is required")
	ErrEmailInvalid      = errors.New("Enter a valid email")
	ErrPasswordRequired  = errors.New("Password is required")
	ErrPasswordTooShort  = errors.New("Password must be at least 8 characters")
	ErrPasswordWeak      = errors.New("Password must include uppercase, lowercase, number, and special character")
	ErrPasswordCase      = errors.New("Password must include upper and lower case letters")
	ErrPasswordDigit     = errors.New("Password must include a number or symbol")
	ErrPasswordsMismatch = errors.New("Passwords do not match")
)

// Name requires a non-blank value
func Name(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrNameRequired
	}
	return nil
}

// Email requires a bare address such as user@example.com
func Email(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		return ErrEmailInvalid
	}
	return nil
}

// LoginPassword only checks length; the backend decides the rest
func LoginPassword(s string) error {
	if s == "" {
		return ErrPasswordRequired
	}
	if len(s) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// SignupPassword requires a lowercase letter, an uppercase letter, a digit
// and one of @$!%*?&, drawn only from letters, digits and those symbols.
func SignupPassword(s string) error {
	if err := LoginPassword(s); err != nil {
		return err
	}

	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return ErrPasswordWeak
		}
	}
	if !lower || !upper || !digit || !symbol {
		return ErrPasswordWeak
	}
	return nil
}

// NewPassword applies to reset and change flows: upper and lower case
// letters, plus a digit or any non-alphanumeric character.
func NewPassword(s string) error {
	if err := LoginPassword(s); err != nil {
		return err
	}

	var lower, upper, digitOrSymbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r), !unicode.IsLetter(r):
			digitOrSymbol = true
		}
	}
	if !lower || !upper {
		return ErrPasswordCase
	}
	if !digitOrSymbol {
		return ErrPasswordDigit
	}
	return nil
}

// Confirm checks that the confirmation matches the password
func Confirm(password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordsMismatch
	}
	return nil
}
