// ABOUTME: JWT minting and validation for the fake backend
// ABOUTME: Access tokens are HS256 JWTs carrying a numeric user_id claim

package fakebackend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const accountIDKey contextKey = "account_id"

type accessClaims struct {
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// IssueAccessToken mints a signed access token for the account id
func (b *Backend) IssueAccessToken(accountID int) (string, error) {
	now := time.Now()
	jti := randomToken()
	claims := accessClaims{
		UserID:    accountID,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(accountID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	b.mu.Lock()
	b.issued = append(b.issued, jti)
	b.mu.Unlock()
	return signed, nil
}

// issueRefreshToken stores an opaque refresh token for the account
func (b *Backend) issueRefreshToken(accountID int) string {
	token := randomToken()
	b.mu.Lock()
	b.refreshTokens[token] = accountID
	b.mu.Unlock()
	return token
}

// RevokeRefreshTokens invalidates every refresh token issued so far
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshTokens = make(map[string]int)
}

func (b *Backend) validateAccessToken(raw string) (int, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	revoked := b.revoked[claims.ID]
	_, exists := b.accounts[claims.UserID]
	b.mu.Unlock()

	if revoked {
		return 0, errors.New("token revoked")
	}
	if !exists {
		return 0, errors.New("user not found")
	}
	return claims.UserID, nil
}

// authenticate rejects requests without a valid bearer access token
func (b *Backend) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, clientError, nil,
				"not_authenticated", "Authentication credentials were not provided.")
			return
		}

		accountID, err := b.validateAccessToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, clientError, nil,
				"token_not_valid", "Given token not valid for any token type")
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next(w, r.WithContext(ctx))
	}
}

func accountIDFrom(ctx context.Context) int {
	id, _ := ctx.Value(accountIDKey).(int)
	return id
}
