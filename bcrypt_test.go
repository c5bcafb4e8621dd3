package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/goliatone/go-user-auth"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPassword(tt.password)

			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrNoEmptyString)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, auth.PasswordCost, cost)

			assert.NoError(t, auth.ComparePasswordAndHash(tt.password, hash))
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := auth.HashPassword("same")
	require.NoError(t, err)
	b, err := auth.HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash := mustHash(password)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  auth.ErrMismatchedHashAndPassword,
		},
		{
			name:     "Case matters",
			password: strings.ToUpper(password),
			hash:     hash,
			wantErr:  auth.ErrMismatchedHashAndPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, auth.VerifyPassword(tt.password, tt.hash))
				return
			}
			assert.NoError(t, err)
			assert.True(t, auth.VerifyPassword(tt.password, tt.hash))
		})
	}
}

func TestComparePasswordAndHash_MalformedHash(t *testing.T) {
	err := auth.ComparePasswordAndHash("password", "not-a-bcrypt-hash")

	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	assert.False(t, auth.VerifyPassword("password", "not-a-bcrypt-hash"))
}

func TestBcryptHasher(t *testing.T) {
	var h auth.PasswordAuthenticator = auth.BcryptHasher{}

	hash, err := h.HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, h.ComparePasswordAndHash("pw", hash))
	assert.Error(t, h.ComparePasswordAndHash("nope", hash))
}
