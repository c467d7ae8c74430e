// ABOUTME: Credential accessors over the pluggable token store
// ABOUTME: The only code path that touches the stored access and refresh tokens

package client

import (
	"errors"
	"fmt"
)

func (c *Client) accessToken() (string, bool) {
	return c.readToken(AccessTokenKey)
}

func (c *Client) refreshToken() (string, bool) {
	return c.readToken(RefreshTokenKey)
}

// readToken treats a store failure as an absent token
func (c *Client) readToken(key string) (string, bool) {
	value, ok, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn("Failed to read credential", "key", key, "error", err)
		return "", false
	}
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// setTokens always writes the access token; the refresh token only when given
func (c *Client) setTokens(access, refresh string) error {
	if err := c.store.Set(AccessTokenKey, access); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if refresh == "" {
		return nil
	}
	if err := c.store.Set(RefreshTokenKey, refresh); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// clearTokens attempts both removals even if the first fails
func (c *Client) clearTokens() error {
	return errors.Join(
		c.store.Remove(AccessTokenKey),
		c.store.Remove(RefreshTokenKey),
	)
}
