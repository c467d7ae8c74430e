// ABOUTME: In-process fake of the learning platform backend HTTP surface
// ABOUTME: Issues real HS256 JWTs, counts calls per route, and can force 401s

package fakebackend

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Route keys accepted by Calls
const (
	RouteRegister       = "POST /auth/register/"
	RouteToken          = "POST /auth/token/"
	RouteRefresh        = "POST /auth/token/refresh/"
	RouteResetPassword  = "POST /auth/reset_password/"
	RouteChangePassword = "POST /auth/change_password/"
	RouteUsers          = "GET /users/"
	RouteUser           = "GET /users/{id}/"
)

// PageSize is the number of users per page of GET /users/
const PageSize = 10

// Account is a user known to the fake backend
type Account struct {
	ID       int
	Name     string
	Email    string
	Username string
	Password string
}

// RecordedRequest captures what the backend saw for one call
type RecordedRequest struct {
	Route         string
	Path          string
	Authorization string
	RequestID     string
}

// Backend is a thread-safe fake backend. Use Handler to mount it or Serve
// to start an httptest server.
type Backend struct {
	secret    []byte
	accessTTL time.Duration

	mu            sync.Mutex
	accounts      map[int]*Account
	byEmail       map[string]int
	nextID        int
	refreshTokens map[string]int
	revoked       map[string]bool
	issued        []string
	calls         map[string]int
	requests      []RecordedRequest
	failRefresh   bool
	refreshHold   chan struct{}
	userOverride  map[string]string
}

// Option configures a Backend
type Option func(*Backend)

// WithSecret sets the HS256 signing key
func WithSecret(secret []byte) Option {
	return func(b *Backend) {
		b.secret = secret
	}
}

// WithAccessTTL sets the lifetime of issued access tokens
func WithAccessTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.accessTTL = ttl
	}
}

// New creates an empty fake backend
func New(opts ...Option) *Backend {
	b := &Backend{
		secret:        randomBytes(32),
		accessTTL:     15 * time.Minute,
		accounts:      make(map[int]*Account),
		byEmail:       make(map[string]int),
		nextID:        1,
		refreshTokens: make(map[string]int),
		revoked:       make(map[string]bool),
		calls:         make(map[string]int),
		userOverride:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Serve starts an httptest server for the backend. Callers must Close it.
func (b *Backend) Serve() *httptest.Server {
	return httptest.NewServer(b.Handler())
}

// Handler returns the chi router serving every backend route
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()

	b.route(r, RouteRegister, false, b.handleRegister)
	b.route(r, RouteToken, false, b.handleToken)
	b.route(r, RouteRefresh, false, b.handleRefresh)
	b.route(r, RouteResetPassword, false, b.handleResetPassword)
	b.route(r, RouteChangePassword, true, b.handleChangePassword)
	b.route(r, RouteUsers, true, b.handleUsers)
	b.route(r, RouteUser, true, b.handleUser)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, clientError, nil, "not_found", "Not found.")
	})
	return r
}

// route registers a handler under a "METHOD /pattern" key and counts every
// call to it, including ones rejected for missing credentials
func (b *Backend) route(r chi.Router, key string, authenticated bool, h http.HandlerFunc) {
	method, pattern := splitRoute(key)

	middlewares := []func(http.HandlerFunc) http.HandlerFunc{b.recordCall(key), logRequest}
	if authenticated {
		middlewares = append(middlewares, b.authenticate)
	}
	r.MethodFunc(method, pattern, chain(h, middlewares...))
}

func (b *Backend) record(key string, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[key]++
	b.requests = append(b.requests, RecordedRequest{
		Route:         key,
		Path:          r.URL.RequestURI(),
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
	})
}

// AddAccount registers a user directly and returns the stored account
func (b *Backend) AddAccount(name, email, password string) Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.addAccountLocked(name, email, password)
}

func (b *Backend) addAccountLocked(name, email, password string) *Account {
	acct := &Account{
		ID:       b.nextID,
		Name:     name,
		Email:    email,
		Username: usernameFor(email),
		Password: password,
	}
	b.nextID++
	b.accounts[acct.ID] = acct
	b.byEmail[acct.Email] = acct.ID
	return acct
}

// Account returns a copy of the account with the given email
func (b *Backend) Account(email string) (Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.byEmail[email]
	if !ok {
		return Account{}, false
	}
	return *b.accounts[id], true
}

// Calls returns how many requests hit the route key
func (b *Backend) Calls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

// TotalCalls returns the number of requests across all routes
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

// Requests returns the recorded requests in arrival order
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// ExpireAccessTokens revokes every access token issued so far. Tokens
// issued afterwards, including by refresh, stay valid.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, jti := range b.issued {
		b.revoked[jti] = true
	}
	b.issued = nil
}

// FailRefresh makes the refresh endpoint reject every token
func (b *Backend) FailRefresh(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failRefresh = fail
}

// HoldRefresh blocks refresh requests until the returned release func runs
func (b *Backend) HoldRefresh() (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.refreshHold = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if b.refreshHold == ch {
				b.refreshHold = nil
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// OverrideUserResponse makes GET /users/{id}/ answer with a raw body
func (b *Backend) OverrideUserResponse(id, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userOverride[id] = body
}

func (b *Backend) sortedAccounts() []Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Account, 0, len(b.accounts))
	for _, acct := range b.accounts {
		out = append(out, *acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func splitRoute(key string) (method, pattern string) {
	method, pattern, ok := strings.Cut(key, " ")
	if !ok {
		return http.MethodGet, key
	}
	return method, pattern
}

func usernameFor(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

func randomToken() string {
	return hex.EncodeToString(randomBytes(16))
}
