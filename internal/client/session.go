// ABOUTME: Local, network-free view of the stored session
// ABOUTME: Reads token presence and unverified timestamps for status displays

package client

import "time"

// SessionInfo describes what the client holds locally. It is
// informational only; the backend decides whether a token is valid.
type SessionInfo struct {
	HasAccessToken  bool       `json:"has_access_token"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	UserID          string     `json:"user_id,omitempty"`
	IssuedAt        *time.Time `json:"issued_at,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// SignedIn reports whether any credential is stored
func (s SessionInfo) SignedIn() bool {
	return s.HasAccessToken || s.HasRefreshToken
}

// Expired reports whether the access token's exp claim is before now.
// A token without exp never expires locally.
func (s SessionInfo) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Session inspects the stored credentials without any network call
func (c *Client) Session() SessionInfo {
	var info SessionInfo

	_, info.HasRefreshToken = c.refreshToken()

	access, ok := c.accessToken()
	if !ok {
		return info
	}
	info.HasAccessToken = true

	claims, ok := DecodePayload(access)
	if !ok {
		return info
	}
	info.UserID, _ = ResolveUserID(claims)

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	return info
}
