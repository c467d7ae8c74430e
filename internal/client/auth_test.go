package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timizia/timizia-cli/internal/fakebackend"
	"github.com/timizia/timizia-cli/internal/tokenstore"
)

func TestLoginStoresTokens(t *testing.T) {
	h := newHarness(t)

	pair, err := h.client.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	access, ok := h.token(t, AccessTokenKey)
	require.True(t, ok)
	refresh, ok := h.token(t, RefreshTokenKey)
	require.True(t, ok)
	assert.Equal(t, pair.Access, access)
	assert.Equal(t, pair.Refresh, refresh)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)

	pair, err := h.client.Login(context.Background(), testEmail, "Wrong123!")
	assert.Nil(t, pair)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Equal(t, "No active account found with the given credentials", httpErr.Message)

	_, ok := h.token(t, AccessTokenKey)
	assert.False(t, ok)
}

func TestLoginWithoutAccessTokenIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"refresh":"r"}`))
	}))
	defer srv.Close()

	store := tokenstore.NewMemory()
	c := New(srv.URL, WithHTTPClient(srv.Client()), WithStore(store))

	_, err := c.Login(context.Background(), testEmail, testPassword)
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Zero(t, store.Len())
}

func TestRegisterDoesNotSignIn(t *testing.T) {
	b := fakebackend.New()
	srv := b.Serve()
	t.Cleanup(srv.Close)
	h := newHarnessFor(t, b, srv, fakebackend.Account{})

	resp, err := h.client.Register(context.Background(), "Grace Hopper", "grace@example.com", "Cobol1959!")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", resp.Name)
	assert.Equal(t, "grace@example.com", resp.Email)
	assert.Zero(t, h.store.Len(), "registration never stores credentials")

	_, err = h.client.Login(context.Background(), "grace@example.com", "Cobol1959!")
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.Register(context.Background(), testName, testEmail, testPassword)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "user with this email already exists.", httpErr.Message)
	require.NotNil(t, httpErr.Body)
	require.NotNil(t, httpErr.Body.Errors[0].Attr)
	assert.Equal(t, "email", *httpErr.Body.Errors[0].Attr)
}

func TestResetPassword(t *testing.T) {
	h := newHarness(t)

	resp, err := h.client.ResetPassword(context.Background(), testEmail, "Brand9New!")
	require.NoError(t, err)
	assert.Equal(t, testEmail, resp.Email)
	assert.Zero(t, h.store.Len())

	requests := h.backend.Requests()
	require.Len(t, requests, 1)
	assert.Empty(t, requests[0].Authorization)

	_, err = h.client.Login(context.Background(), testEmail, "Brand9New!")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	pair := h.login(t)

	resp, err := h.client.ChangePassword(context.Background(), testEmail, testPassword, "Changed1!")
	require.NoError(t, err)
	assert.Equal(t, testEmail, resp.Email)

	requests := h.backend.Requests()
	last := requests[len(requests)-1]
	assert.Equal(t, fakebackend.RouteChangePassword, last.Route)
	assert.Equal(t, "Bearer "+pair.Access, last.Authorization)

	acct, _ := h.backend.Account(testEmail)
	assert.Equal(t, "Changed1!", acct.Password)
}

func TestChangePasswordWithoutTokenExpiresSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.ChangePassword(context.Background(), testEmail, testPassword, "Changed1!")
	require.ErrorIs(t, err, ErrSessionExpired)

	requests := h.backend.Requests()
	require.Len(t, requests, 1, "request is still dispatched, then no refresh is possible")
	assert.Equal(t, fakebackend.RouteChangePassword, requests[0].Route)
	assert.Empty(t, requests[0].Authorization)
	assert.Zero(t, h.backend.Calls(fakebackend.RouteRefresh))
	assert.Equal(t, []SessionEnd{SessionExpired}, h.events.list())
}

func TestLogoutClearsTokensWithoutNetwork(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	before := h.backend.TotalCalls()

	require.NoError(t, h.client.Logout())

	assert.Zero(t, h.store.Len())
	assert.Equal(t, before, h.backend.TotalCalls())
	assert.Equal(t, []SessionEnd{SessionLoggedOut}, h.events.list())
}

type failingStore struct {
	tokenstore.Store
}

func (failingStore) Remove(string) error {
	return assert.AnError
}

func TestLogoutReportsStoreFailure(t *testing.T) {
	events := &sessionEvents{}
	c := New("http://unused", WithStore(failingStore{tokenstore.NewMemory()}), WithSessionEndHandler(events.handle))

	err := c.Logout()
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []SessionEnd{SessionLoggedOut}, events.list())
}
