// ABOUTME: Tests for the register command
// ABOUTME: Verifies validation, backend errors and that registration does not sign in

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/timizia/timizia-cli/internal/fakebackend"
)

func TestRegisterCommand_Success(t *testing.T) {
	c, b, _ := newTestClient(t)

	var buf bytes.Buffer
	exitCode := runRegister(context.Background(), c, &buf, "Grace Hopper", "grace@example.com", "Secret1!")

	if exitCode != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Account created for Grace Hopper <grace@example.com>")) {
		t.Errorf("expected confirmation, got %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("timizia login")) {
		t.Error("expected login hint")
	}
	if _, ok := b.Account("grace@example.com"); !ok {
		t.Error("expected account on backend")
	}
	if c.Session().SignedIn() {
		t.Error("expected registration not to sign in")
	}
}

func TestRegisterCommand_Validation(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		email    string
		password string
	}{
		{"missing name", " ", "grace@example.com", "Secret1!"},
		{"invalid email", "Grace", "grace@", "Secret1!"},
		{"short password", "Grace", "grace@example.com", "Se1!"},
		{"weak password", "Grace", "grace@example.com", "secret11"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, b, _ := newTestClient(t)

			var buf bytes.Buffer
			exitCode := runRegister(context.Background(), c, &buf, tc.fullName, tc.email, tc.password)

			if exitCode != exitError {
				t.Errorf("expected exit code 2, got %d", exitCode)
			}
			if b.TotalCalls() != 0 {
				t.Errorf("expected no backend calls, got %d", b.TotalCalls())
			}
		})
	}
}

func TestRegisterCommand_Duplicate(t *testing.T) {
	c, b, _ := newTestClient(t)

	var buf bytes.Buffer
	exitCode := runRegister(context.Background(), c, &buf, testName, testEmail, testPassword)

	if exitCode != exitRejected {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("already exists")) {
		t.Errorf("expected backend message, got %q", buf.String())
	}
	if b.Calls(fakebackend.RouteRegister) != 1 {
		t.Errorf("expected one register call, got %d", b.Calls(fakebackend.RouteRegister))
	}
}

func TestRegisterCommand_JSON(t *testing.T) {
	withJSONOutput(t)
	c, _, _ := newTestClient(t)

	var buf bytes.Buffer
	runRegister(context.Background(), c, &buf, "Grace Hopper", "grace@example.com", "Secret1!")

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["email"] != "grace@example.com" {
		t.Errorf("expected email in JSON, got %v", parsed["email"])
	}
}
