package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionEmpty(t *testing.T) {
	c := New("http://unused")

	info := c.Session()
	assert.False(t, info.SignedIn())
	assert.False(t, info.HasAccessToken)
	assert.Empty(t, info.UserID)
	assert.Nil(t, info.ExpiresAt)
}

func TestSessionReadsClaims(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	info := h.client.Session()
	assert.True(t, info.SignedIn())
	assert.True(t, info.HasAccessToken)
	assert.True(t, info.HasRefreshToken)
	assert.Equal(t, "1", info.UserID)
	require.NotNil(t, info.ExpiresAt)
	require.NotNil(t, info.IssuedAt)
	assert.True(t, info.ExpiresAt.After(*info.IssuedAt))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(info.ExpiresAt.Add(time.Second)))
	assert.Zero(t, h.backend.Calls("GET /users/{id}/"), "session inspection is local")
}

func TestSessionMalformedAccessToken(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Set(AccessTokenKey, "garbage"))

	info := h.client.Session()
	assert.True(t, info.HasAccessToken)
	assert.False(t, info.HasRefreshToken)
	assert.Empty(t, info.UserID)
	assert.Nil(t, info.ExpiresAt)
	assert.False(t, info.Expired(time.Now()))
}

func TestSessionRefreshOnly(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Set(RefreshTokenKey, "r"))

	info := h.client.Session()
	assert.True(t, info.SignedIn())
	assert.False(t, info.HasAccessToken)
}
