package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	auth "github.com/goliatone/go-user-auth"
)

func TestJWTClaims_Accessors(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID:      "1",
		UserRole: "admin",
	}

	assert.Equal(t, "alice", claims.Subject())
	assert.Equal(t, "1", claims.UserID())
	assert.Equal(t, "admin", claims.Role())
	assert.Equal(t, "jti-1", claims.TokenID())
	assert.Equal(t, now, claims.IssuedAt().UTC())
	assert.Equal(t, now.Add(time.Hour), claims.Expires().UTC())
}

func TestJWTClaims_Fallbacks(t *testing.T) {
	claims := &auth.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "bob"}}

	assert.Equal(t, "bob", claims.UserID())
	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
	assert.Empty(t, claims.Role())
	assert.Empty(t, claims.TokenID())
}
