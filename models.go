package auth

import (
	"strconv"
	"strings"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is the default role for registered accounts
	RoleUser UserRole = "user"
	// RoleAdmin can manage other accounts
	RoleAdmin UserRole = "admin"
)

// User is the persisted user record
type User struct {
	ID           int      `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email,omitempty"`
	PasswordHash string   `json:"passwordHash,omitempty"`
	Role         UserRole `json:"role,omitempty"`
}

// StringID returns the id as used in URLs and token claims
func (u User) StringID() string {
	return strconv.Itoa(u.ID)
}

// UserResponse is the public projection of a User, without the password hash
type UserResponse struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Role     UserRole `json:"role,omitempty"`
}

// NewUserResponse builds the public view of the given user
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// Collection is the document we persist: every user record plus the
// counter used to assign the next id.
type Collection struct {
	Users  []User `json:"users"`
	NextID int    `json:"nextId"`
}

// NewCollection returns an empty collection
func NewCollection() Collection {
	return Collection{
		Users:  []User{},
		NextID: 1,
	}
}

// Clone returns a deep copy, safe to mutate
func (c Collection) Clone() Collection {
	out := Collection{
		Users:  make([]User, len(c.Users)),
		NextID: c.NextID,
	}
	copy(out.Users, c.Users)
	return out
}

// Normalize repairs a decoded collection so nextId stays ahead of
// every stored id.
func (c *Collection) Normalize() {
	if c.Users == nil {
		c.Users = []User{}
	}

	maxID := 0
	for _, u := range c.Users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	if c.NextID <= maxID {
		c.NextID = maxID + 1
	}

	if c.NextID < 1 {
		c.NextID = 1
	}
}

// IndexOf returns the position of the record with the given id or -1
func (c Collection) IndexOf(id int) int {
	for i, u := range c.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// FindByUsername returns the position of the record with the given
// username or -1. Matching is exact, callers trim input before storing
// or looking it up.
func (c Collection) FindByUsername(username string) int {
	if username == "" {
		return -1
	}
	for i, u := range c.Users {
		if u.Username == username {
			return i
		}
	}
	return -1
}

// ParseUserID converts a path id into the numeric record id
func ParseUserID(id string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
