// ABOUTME: HTTP session client for the learning platform backend
// ABOUTME: Attaches bearer tokens, refreshes expired access tokens and retries once

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/timizia/timizia-cli/internal/tokenstore"
)

// Storage keys for the credential pair
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

const (
	refreshEndpoint = "/auth/token/refresh/"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// SessionEnd tells a session-end handler why the credentials went away
type SessionEnd int

const (
	SessionLoggedOut SessionEnd = iota
	SessionExpired
)

func (e SessionEnd) String() string {
	switch e {
	case SessionLoggedOut:
		return "logged_out"
	case SessionExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Client is the API client for the learning platform backend.
// It is the only component that reads or writes the credential store.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	store        tokenstore.Store
	logger       *slog.Logger
	onSessionEnd func(SessionEnd)
	refreshGroup singleflight.Group
	expireMu     sync.Mutex
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithStore sets the credential store. Defaults to an in-memory store.
func WithStore(s tokenstore.Store) Option {
	return func(c *Client) {
		if s != nil {
			c.store = s
		}
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSessionEndHandler registers a callback run after credentials are
// cleared by Logout or by a failed refresh.
func WithSessionEndHandler(fn func(SessionEnd)) Option {
	return func(c *Client) {
		c.onSessionEnd = fn
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: NormalizeBaseURL(baseURL),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:  tokenstore.NewMemory(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizeBaseURL strips all whitespace and any trailing slashes.
// Normalizing an already normalized URL returns it unchanged.
func NormalizeBaseURL(raw string) string {
	compact := strings.Join(strings.Fields(raw), "")
	return strings.TrimRight(compact, "/")
}

// normalizeEndpoint guarantees exactly one leading slash
func normalizeEndpoint(endpoint string) string {
	return "/" + strings.TrimLeft(endpoint, "/")
}

// RequestOptions describes the outbound call. Body is encoded as JSON.
type RequestOptions struct {
	Method string
	Body   any
}

// Request sends a request to endpoint and decodes a 2xx JSON body into out
// (out may be nil). When authenticated is set, the stored access token is
// sent as a bearer token; a 401 triggers one refresh and one retry.
//
// Errors are *NetworkError, *HTTPError, ErrSessionExpired, or wrap
// ErrInvalidResponse.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions, authenticated bool, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.baseURL + normalizeEndpoint(endpoint)

	var payload []byte
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = b
	}

	var token string
	if authenticated {
		token, _ = c.accessToken()
	}

	resp, err := c.send(ctx, method, url, payload, authenticated, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && authenticated {
		drain(resp.Body)

		refreshed, err := c.refresh(ctx)
		if err != nil {
			return &NetworkError{URL: url, Err: err}
		}
		if !refreshed {
			c.expireSession(token)
			return ErrSessionExpired
		}

		// The retry is final: a second 401 surfaces as an HTTPError.
		token, _ = c.accessToken()
		resp, err = c.send(ctx, method, url, payload, authenticated, token)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	return decodeBody(resp.Body, out)
}

// send issues a single HTTP round trip, attaching token as a bearer
// credential when it is not empty
func (c *Client) send(ctx context.Context, method, url string, payload []byte, authenticated bool, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header = headers(token)
	req.Header.Set(requestIDHeader, requestID)

	log := c.logger.With("request_id", requestID, "method", method, "url", url)
	log.Debug("Dispatching request", "authenticated", authenticated)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("Request failed", "error", err)
		return nil, &NetworkError{URL: url, Err: err}
	}

	log.Debug("Response received", "status", resp.StatusCode)
	return resp, nil
}

// headers builds the request headers. A missing token on an authenticated
// call is not an error; the backend rejects the request instead.
func headers(token string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")

	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token. It reports success only; failures never surface as errors.
func (c *Client) RefreshAccessToken(ctx context.Context) bool {
	ok, err := c.refresh(ctx)
	return err == nil && ok
}

// refresh runs at most one network refresh at a time; concurrent callers
// share its result. The shared exchange is detached from the caller's
// cancellation. A caller whose ctx ends while waiting gets ctx.Err().
func (c *Client) refresh(ctx context.Context) (bool, error) {
	refreshToken, ok := c.refreshToken()
	if !ok {
		return false, nil
	}

	ch := c.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		return c.exchangeRefreshToken(context.WithoutCancel(ctx), refreshToken), nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("Joined in-flight token refresh")
		}
		return res.Val.(bool), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) bool {
	var resp refreshResponse
	err := c.Request(ctx, refreshEndpoint, RequestOptions{
		Method: http.MethodPost,
		Body:   refreshRequest{Refresh: refreshToken},
	}, false, &resp)
	if err != nil {
		c.logger.Warn("Token refresh failed", "error", err)
		return false
	}
	if resp.Access == "" {
		c.logger.Warn("Token refresh returned no access token")
		return false
	}

	// Refresh tokens are not rotated by the backend; keep the stored one.
	if err := c.setTokens(resp.Access, ""); err != nil {
		c.logger.Warn("Failed to store refreshed access token", "error", err)
		return false
	}

	c.logger.Debug("Access token refreshed")
	return true
}

// expireSession clears credentials after an unrecoverable 401 on a request
// that carried sentToken. If the stored access token no longer matches, a
// concurrent request already expired the session (or a new one started),
// so nothing is cleared and no handler runs.
func (c *Client) expireSession(sentToken string) {
	c.expireMu.Lock()
	if current, _ := c.accessToken(); current != sentToken {
		c.expireMu.Unlock()
		c.logger.Debug("Session already ended by another request")
		return
	}
	err := c.clearTokens()
	c.expireMu.Unlock()

	if err != nil {
		c.logger.Warn("Failed to clear credentials", "error", err)
	}
	c.logger.Info("Session expired, credentials cleared")
	c.notify(SessionExpired)
}

func (c *Client) notify(reason SessionEnd) {
	if c.onSessionEnd != nil {
		c.onSessionEnd(reason)
	}
}

// errorFromResponse builds an HTTPError, preferring the backend's first
// error detail over the status text
func errorFromResponse(resp *http.Response) error {
	httpErr := &HTTPError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body ErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Type != "" || len(body.Errors) > 0 {
			httpErr.Body = &body
		}
		if len(body.Errors) > 0 {
			httpErr.Message = body.Errors[0].Detail
		}
	}

	if httpErr.Message == "" {
		httpErr.Message = http.StatusText(resp.StatusCode)
	}
	if httpErr.Message == "" {
		httpErr.Message = "an error occurred"
	}
	return httpErr
}

func decodeBody(r io.Reader, out any) error {
	target := out
	if target == nil {
		target = new(json.RawMessage)
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	// The body must hold exactly one JSON value; only whitespace may follow.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: unexpected data after JSON body", ErrInvalidResponse)
	}
	return nil
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBody))
	body.Close()
}
