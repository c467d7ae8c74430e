// ABOUTME: Tests for the version and ui commands
// ABOUTME: Verifies banner output and non-blocking session-end relay

package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/timizia/timizia-cli/internal/client"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	exitCode := runVersion(&buf)

	if exitCode != exitOK {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("timizia "+Version)) {
		t.Errorf("expected version line, got %q", buf.String())
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	withJSONOutput(t)

	var buf bytes.Buffer
	runVersion(&buf)

	var parsed map[string]string
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["version"] != Version {
		t.Errorf("expected version %q, got %q", Version, parsed["version"])
	}
}

func TestRelaySessionEnd(t *testing.T) {
	events := make(chan client.SessionEnd, 1)
	relay := relaySessionEnd(events)

	relay(client.SessionExpired)
	// A full buffer drops the event instead of blocking
	relay(client.SessionLoggedOut)

	if got := <-events; got != client.SessionExpired {
		t.Errorf("expected expired event, got %s", got)
	}
	select {
	case extra := <-events:
		t.Errorf("expected dropped event, got %s", extra)
	default:
	}
}
