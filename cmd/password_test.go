// ABOUTME: Tests for the reset-password and change-password commands
// ABOUTME: Verifies email resolution from the session and backend rejections

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/timizia/timizia-cli/internal/fakebackend"
)

func TestResetPasswordCommand_Success(t *testing.T) {
	c, b, _ := newTestClient(t)

	var buf bytes.Buffer
	exitCode := runResetPassword(context.Background(), c, &buf, testEmail, "NewSecret1")

	if exitCode != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Password reset for ada@example.com")) {
		t.Errorf("expected confirmation, got %q", buf.String())
	}
	if acct, _ := b.Account(testEmail); acct.Password != "NewSecret1" {
		t.Error("expected password to be updated on backend")
	}
}

func TestResetPasswordCommand_UnknownEmail(t *testing.T) {
	c, _, _ := newTestClient(t)

	var buf bytes.Buffer
	exitCode := runResetPassword(context.Background(), c, &buf, "nobody@example.com", "NewSecret1")

	if exitCode != exitRejected {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
}

func TestResetPasswordCommand_WeakPassword(t *testing.T) {
	c, b, _ := newTestClient(t)

	var buf bytes.Buffer
	exitCode := runResetPassword(context.Background(), c, &buf, testEmail, "alllowercase1")

	if exitCode != exitError {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if b.TotalCalls() != 0 {
		t.Errorf("expected no backend calls, got %d", b.TotalCalls())
	}
}

func TestChangePasswordCommand_NotSignedIn(t *testing.T) {
	c, _, _ := newTestClient(t)

	var buf bytes.Buffer
	exitCode := runChangePassword(context.Background(), c, &buf, "", testPassword, "NewSecret1")

	if exitCode != exitRejected {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("not signed in")) {
		t.Errorf("expected not signed in message, got %q", buf.String())
	}
}

func TestChangePasswordCommand_EmailFromSession(t *testing.T) {
	c, b, _ := newTestClient(t)
	signIn(t, c)

	var buf bytes.Buffer
	exitCode := runChangePassword(context.Background(), c, &buf, "", testPassword, "NewSecret1")

	if exitCode != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Password changed for ada@example.com")) {
		t.Errorf("expected confirmation, got %q", buf.String())
	}
	if b.Calls(fakebackend.RouteChangePassword) != 1 {
		t.Errorf("expected one change-password call, got %d", b.Calls(fakebackend.RouteChangePassword))
	}
}

func TestChangePasswordCommand_WrongCurrent(t *testing.T) {
	c, _, _ := newTestClient(t)
	signIn(t, c)

	var buf bytes.Buffer
	exitCode := runChangePassword(context.Background(), c, &buf, testEmail, "Wrong123!", "NewSecret1")

	if exitCode != exitRejected {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Current password is incorrect.")) {
		t.Errorf("expected backend message, got %q", buf.String())
	}
}

func TestChangePasswordCommand_MissingCurrent(t *testing.T) {
	c, _, _ := newTestClient(t)

	var buf bytes.Buffer
	exitCode := runChangePassword(context.Background(), c, &buf, testEmail, "", "NewSecret1")

	if exitCode != exitError {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
}

func TestChangePasswordCommand_SessionExpired(t *testing.T) {
	c, b, _ := newTestClient(t)
	signIn(t, c)
	b.ExpireAccessTokens()
	b.FailRefresh(true)

	var buf bytes.Buffer
	exitCode := runChangePassword(context.Background(), c, &buf, testEmail, testPassword, "NewSecret1")

	if exitCode != exitRejected {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if c.Session().SignedIn() {
		t.Error("expected credentials to be cleared")
	}
}
