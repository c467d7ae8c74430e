// ABOUTME: Authentication endpoints: register, login, password flows, logout
// ABOUTME: Login is the only call that establishes a session

package client

import (
	"context"
	"fmt"
	"net/http"
)

const (
	registerEndpoint       = "/auth/register/"
	tokenEndpoint          = "/auth/token/"
	resetPasswordEndpoint  = "/auth/reset_password/"
	changePasswordEndpoint = "/auth/change_password/"
)

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*RegisterResponse, error) {
	var resp RegisterResponse
	err := c.Request(ctx, registerEndpoint, RequestOptions{
		Method: http.MethodPost,
		Body:   RegisterRequest{Name: name, Email: email, Password: password},
	}, false, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token pair and stores both tokens
// before returning them.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.Request(ctx, tokenEndpoint, RequestOptions{
		Method: http.MethodPost,
		Body:   loginRequest{Username: email, Password: password},
	}, false, &pair)
	if err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("%w: token response has no access token", ErrInvalidResponse)
	}

	if err := c.setTokens(pair.Access, pair.Refresh); err != nil {
		return nil, err
	}
	c.logger.Info("Signed in")
	return &pair, nil
}

// ResetPassword sets a new password for email. No session side effects.
func (c *Client) ResetPassword(ctx context.Context, email, password string) (*EmailResponse, error) {
	var resp EmailResponse
	err := c.Request(ctx, resetPasswordEndpoint, RequestOptions{
		Method: http.MethodPost,
		Body:   resetPasswordRequest{Email: email, Password: password},
	}, false, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword is authenticated and goes through the refresh path on 401
func (c *Client) ChangePassword(ctx context.Context, email, current, next string) (*EmailResponse, error) {
	var resp EmailResponse
	err := c.Request(ctx, changePasswordEndpoint, RequestOptions{
		Method: http.MethodPost,
		Body: changePasswordRequest{
			Email:           email,
			CurrentPassword: current,
			NewPassword:     next,
		},
	}, true, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout clears stored credentials and notifies the session-end handler.
// It makes no network call.
func (c *Client) Logout() error {
	err := c.clearTokens()
	if err != nil {
		err = fmt.Errorf("failed to clear credentials: %w", err)
	}
	c.logger.Info("Signed out")
	c.notify(SessionLoggedOut)
	return err
}
