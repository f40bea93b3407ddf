// Package tokentest mints signed tokens for tests. The console never checks
// signatures, so a fixed HMAC key is enough.
package tokentest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var signingKey = []byte("tokentest-signing-key")

func Mint(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return signed
}

// Valid mints a token expiring ttl from now with the given role and id.
func Valid(t testing.TB, ttl time.Duration, role string, id any) string {
	t.Helper()

	claims := jwt.MapClaims{"exp": time.Now().Add(ttl).Unix()}
	if role != "" {
		claims["role"] = role
	}
	if id != nil {
		claims["id"] = id
	}
	return Mint(t, claims)
}

func Expired(t testing.TB) string {
	t.Helper()
	return Mint(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix(), "role": "Technical", "id": 7})
}
