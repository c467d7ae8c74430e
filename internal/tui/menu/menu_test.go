// ABOUTME: Tests for the welcome menu
// ABOUTME: Validates options, cancellation and selection behavior

package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMenuOptions(t *testing.T) {
	m := New()

	if len(m.options) != 4 {
		t.Errorf("expected 4 options, got %d", len(m.options))
	}
	if m.options[0].value != ActionLogin {
		t.Errorf("expected first option to be login, got %s", m.options[0].value)
	}
	if m.selected != ActionLogin {
		t.Errorf("expected login preselected, got %s", m.selected)
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionLogin, "login"},
		{ActionSignup, "signup"},
		{ActionReset, "reset"},
		{ActionQuit, "quit"},
		{Action(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.action.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestMenuCancel(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune("q")},
	} {
		m := New()
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("expected a command for %q", key.String())
		}
		if _, ok := cmd().(CancelledMsg); !ok {
			t.Errorf("expected CancelledMsg for %q", key.String())
		}
	}
}

func TestMenuView(t *testing.T) {
	m := New()
	m.Init()

	view := m.View()
	if view == "" {
		t.Error("expected menu to render")
	}
}
