// ABOUTME: Unverified decoding of the access token payload
// ABOUTME: Resolves a user identifier from claims without checking the signature

package client

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// identityClaims lists top-level claims that may carry the user id, in
// priority order. The nested user.id claim sits between the first two.
var identityClaims = []string{"user_id", "sub", "id"}

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodePayload decodes the middle segment of a JWT without verifying it.
// Any malformed input yields ok == false. The result must never be used for
// authorization; the backend re-validates the token on every call.
func DecodePayload(token string) (jwt.MapClaims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, false
	}

	raw, err := decodeSegment(parts[1])
	if err != nil {
		return nil, false
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil || claims == nil {
		return nil, false
	}
	return claims, true
}

// ResolveUserID picks the user identifier from decoded claims: user_id,
// then user.id, then sub, then id. Claims with unusable values are skipped.
func ResolveUserID(claims jwt.MapClaims) (string, bool) {
	if claims == nil {
		return "", false
	}

	if id, ok := claimID(claims["user_id"]); ok {
		return id, true
	}
	if user, ok := claims["user"].(map[string]interface{}); ok {
		if id, ok := claimID(user["id"]); ok {
			return id, true
		}
	}
	for _, name := range identityClaims[1:] {
		if id, ok := claimID(claims[name]); ok {
			return id, true
		}
	}
	return "", false
}

// decodeSegment accepts base64url, the JWT encoding, and falls back to
// standard base64 for payloads written with '+' and '/'.
func decodeSegment(seg string) ([]byte, error) {
	raw, err := segmentParser.DecodeSegment(seg)
	if err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(seg, "="))
}

// UserIDFromToken combines DecodePayload and ResolveUserID
func UserIDFromToken(token string) (string, bool) {
	claims, ok := DecodePayload(token)
	if !ok {
		return "", false
	}
	return ResolveUserID(claims)
}

func claimID(v interface{}) (string, bool) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", false
		}
		return id, true
	case float64:
		if id != math.Trunc(id) || math.IsInf(id, 0) {
			return "", false
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	default:
		return "", false
	}
}
