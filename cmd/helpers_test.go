package cmd

import (
	"context"
	"testing"

	"github.com/timizia/timizia-cli/internal/client"
	"github.com/timizia/timizia-cli/internal/fakebackend"
	"github.com/timizia/timizia-cli/internal/tokenstore"
)

const (
	testName     = "Ada Lovelace"
	testEmail    = "ada@example.com"
	testPassword = "Secret1!"
)

// newTestClient starts a fake backend with one account and returns a
// client bound to it with an in-memory credential store
func newTestClient(t *testing.T) (*client.Client, *fakebackend.Backend, fakebackend.Account) {
	t.Helper()

	b := fakebackend.New()
	acct := b.AddAccount(testName, testEmail, testPassword)
	srv := b.Serve()
	t.Cleanup(srv.Close)

	c := client.New(srv.URL,
		client.WithHTTPClient(srv.Client()),
		client.WithStore(tokenstore.NewMemory()),
	)
	return c, b, acct
}

func signIn(t *testing.T, c *client.Client) {
	t.Helper()
	if _, err := c.Login(context.Background(), testEmail, testPassword); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

// withJSONOutput enables --json for the duration of the test
func withJSONOutput(t *testing.T) {
	t.Helper()
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })
}
