package client

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timizia/timizia-cli/internal/fakebackend"
	"github.com/timizia/timizia-cli/internal/tokenstore"
)

const (
	testName     = "Ada Lovelace"
	testEmail    = "ada@example.com"
	testPassword = "Secret1!"
)

// sessionEvents records session-end notifications
type sessionEvents struct {
	mu     sync.Mutex
	events []SessionEnd
}

func (s *sessionEvents) handle(e SessionEnd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *sessionEvents) list() []SessionEnd {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SessionEnd(nil), s.events...)
}

type harness struct {
	backend *fakebackend.Backend
	server  *httptest.Server
	store   *tokenstore.Memory
	events  *sessionEvents
	client  *Client
	account fakebackend.Account
}

// newHarness starts a fake backend with one account and a client bound to it
func newHarness(t *testing.T) *harness {
	t.Helper()

	b := fakebackend.New()
	acct := b.AddAccount(testName, testEmail, testPassword)
	srv := b.Serve()
	t.Cleanup(srv.Close)

	return newHarnessFor(t, b, srv, acct)
}

func newHarnessFor(t *testing.T, b *fakebackend.Backend, srv *httptest.Server, acct fakebackend.Account) *harness {
	t.Helper()

	h := &harness{
		backend: b,
		server:  srv,
		store:   tokenstore.NewMemory(),
		events:  &sessionEvents{},
		account: acct,
	}
	h.client = New(srv.URL,
		WithHTTPClient(srv.Client()),
		WithStore(h.store),
		WithSessionEndHandler(h.events.handle),
	)
	return h
}

// login signs the harness client in and resets nothing else
func (h *harness) login(t *testing.T) *TokenPair {
	t.Helper()
	pair, err := h.client.Login(t.Context(), h.account.Email, h.account.Password)
	require.NoError(t, err)
	return pair
}

func (h *harness) token(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Get(key)
	require.NoError(t, err)
	return v, ok
}

// unsignedToken builds a JWT-shaped string around a raw JSON payload
func unsignedToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".signature"
}

// roundTripFunc lets tests observe outbound requests without a network
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
