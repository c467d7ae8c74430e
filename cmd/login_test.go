// ABOUTME: Tests for the login and logout commands
// ABOUTME: Verifies stored credentials, output formatting and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/timizia/timizia-cli/internal/client"
	"github.com/timizia/timizia-cli/internal/fakebackend"
)

func TestLoginCommand_Success(t *testing.T) {
	c, _, _ := newTestClient(t)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), c, &buf, testEmail, testPassword)

	if exitCode != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Signed in as Ada Lovelace <ada@example.com>")) {
		t.Errorf("expected signed in message, got %q", buf.String())
	}
	if !c.Session().SignedIn() {
		t.Error("expected credentials to be stored")
	}
}

func TestLoginCommand_WrongPassword(t *testing.T) {
	c, _, _ := newTestClient(t)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), c, &buf, testEmail, "Wrong123!")

	if exitCode != exitRejected {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("No active account found")) {
		t.Errorf("expected backend message, got %q", buf.String())
	}
	if c.Session().SignedIn() {
		t.Error("expected no credentials after failed login")
	}
}

func TestLoginCommand_InvalidInput(t *testing.T) {
	c, b, _ := newTestClient(t)

	var buf bytes.Buffer
	if code := runLogin(context.Background(), c, &buf, "not-an-email", testPassword); code != exitError {
		t.Errorf("expected exit code 2 for bad email, got %d", code)
	}
	if code := runLogin(context.Background(), c, &buf, testEmail, "short"); code != exitError {
		t.Errorf("expected exit code 2 for short password, got %d", code)
	}
	if b.TotalCalls() != 0 {
		t.Errorf("expected no backend calls, got %d", b.TotalCalls())
	}
}

func TestLoginCommand_ConnectionError(t *testing.T) {
	b := fakebackend.New()
	srv := b.Serve()
	srv.Close()

	c := client.New(srv.URL)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), c, &buf, testEmail, testPassword)

	if exitCode != exitError {
		t.Errorf("expected exit code 2 on connection error, got %d", exitCode)
	}
}

func TestLoginCommand_JSON(t *testing.T) {
	withJSONOutput(t)
	c, _, _ := newTestClient(t)

	var buf bytes.Buffer
	runLogin(context.Background(), c, &buf, testEmail, testPassword)

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["signed_in"] != true {
		t.Errorf("expected signed_in true, got %v", parsed["signed_in"])
	}
	user, ok := parsed["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected user object, got %v", parsed["user"])
	}
	if user["email"] != testEmail {
		t.Errorf("expected user email, got %v", user["email"])
	}
}

func TestFormatLoginHuman(t *testing.T) {
	if got := formatLoginHuman(testEmail, nil); got != "Signed in as ada@example.com" {
		t.Errorf("unexpected output without user: %q", got)
	}

	user := &client.User{Username: "ada", Email: testEmail}
	if got := formatLoginHuman(testEmail, user); got != "Signed in as ada <ada@example.com>" {
		t.Errorf("unexpected output with username: %q", got)
	}
}

func TestLogoutCommand(t *testing.T) {
	c, b, _ := newTestClient(t)
	signIn(t, c)
	before := b.TotalCalls()

	var buf bytes.Buffer
	exitCode := runLogout(c, &buf)

	if exitCode != exitOK {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Signed out.")) {
		t.Errorf("expected signed out message, got %q", buf.String())
	}
	if c.Session().SignedIn() {
		t.Error("expected credentials to be cleared")
	}
	if b.TotalCalls() != before {
		t.Error("expected logout not to contact the backend")
	}
}
