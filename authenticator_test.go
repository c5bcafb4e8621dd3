package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-user-auth"
)

func newAuther(repo auth.RepositoryManager) *auth.Auther {
	provider := auth.NewUserProvider(repo.Users()).WithLogger(nopLogger{})
	registrar := auth.NewRegisterUserHandler(repo).WithLogger(nopLogger{})
	return auth.NewAuthenticator(provider, registrar, newTestConfig()).WithLogger(nopLogger{})
}

func TestAuther_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo()
	auther := newAuther(repo)

	user, err := auther.Register(ctx, auth.RegisterUserMessage{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	token, err := auther.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auther.TokenService().Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject())
	assert.Equal(t, user.StringID(), claims.UserID())
	assert.Equal(t, "user", claims.Role())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires(), 5*time.Second)
}

func TestAuther_UsesConfiguredSigningMethod(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(auth.User{ID: 1, Username: "alice", PasswordHash: mustHash("pw"), Role: auth.RoleUser})

	cfg := newTestConfig()
	cfg.method = "HS384"
	provider := auth.NewUserProvider(repo.Users())
	auther := auth.NewAuthenticator(provider, auth.NewRegisterUserHandler(repo), cfg).WithLogger(nopLogger{})

	token, err := auther.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS384", parsed.Method.Alg())

	_, err = auther.TokenService().Validate(token)
	assert.NoError(t, err)
}

func TestAuther_LoginFailures(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(auth.User{ID: 1, Username: "alice", PasswordHash: mustHash("pw"), Role: auth.RoleUser})
	auther := newAuther(repo)

	_, err := auther.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)

	_, err = auther.Login(ctx, "bob", "pw")
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
}

func TestAuther_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo()
	auther := newAuther(repo)

	_, err := auther.Register(ctx, auth.RegisterUserMessage{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	_, err = auther.Register(ctx, auth.RegisterUserMessage{Username: "alice", Password: "pw"})
	assert.Error(t, err)
}

func TestAuther_TokenServiceOverride(t *testing.T) {
	repo, _ := newRepo()
	ts := auth.NewTokenService([]byte("other"), time.Minute, "", nopLogger{})

	auther := newAuther(repo).WithTokenService(ts)
	assert.Same(t, ts, auther.TokenService())

	_, err := auther.TokenService().Validate("garbage")
	assert.True(t, auth.IsMalformedError(err))
}
