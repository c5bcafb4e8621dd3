package auth

// UserIdentity is the Identity view of a stored User. It holds a copy,
// so later repository writes do not change an issued identity.
type UserIdentity struct {
	user User
}

var _ Identity = UserIdentity{}

// NewIdentityFromUser returns an Identity for the provided user
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: *user}
}

// ID returns the numeric id in its string form
func (u UserIdentity) ID() string {
	return u.user.StringID()
}

func (u UserIdentity) Username() string {
	return u.user.Username
}

func (u UserIdentity) Email() string {
	return u.user.Email
}

func (u UserIdentity) Role() string {
	return string(u.user.Role)
}
