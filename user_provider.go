package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// UserFinder is a store we can use to retrieve users
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// UserProvider resolves identities from the user repository
type UserProvider struct {
	store  UserFinder
	hasher PasswordAuthenticator
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserFinder) *UserProvider {
	return &UserProvider{
		store:  store,
		hasher: BcryptHasher{},
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// WithPasswordAuthenticator swaps the hash comparison implementation
func (u *UserProvider) WithPasswordAuthenticator(h PasswordAuthenticator) *UserProvider {
	if h != nil {
		u.hasher = h
	}
	return u
}

// VerifyIdentity looks the username up in the repository and checks the
// password against the stored hash.
func (u *UserProvider) VerifyIdentity(ctx context.Context, username, password string) (Identity, error) {
	username = strings.TrimSpace(username)

	user, err := u.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) || IsUserNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrIdentityNotFound
	}

	if err := u.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if !errors.Is(err, ErrMismatchedHashAndPassword) {
			u.logger.Warn("stored password hash could not be compared", "user_id", user.ID, "error", err)
		}
		return nil, ErrMismatchedHashAndPassword
	}

	return NewIdentityFromUser(user), nil
}
