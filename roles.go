package auth

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	for _, role := range GetAllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// roleNames lists the predefined roles for error messages
func roleNames() string {
	names := make([]string, 0, len(GetAllRoles()))
	for _, role := range GetAllRoles() {
		names = append(names, string(role))
	}
	return strings.Join(names, ", ")
}

// roleRule accepts an empty value or any predefined role, given as a
// string or a UserRole.
var roleRule = validation.By(func(value any) error {
	var role string
	switch v := value.(type) {
	case string:
		role = v
	case UserRole:
		role = string(v)
	default:
		return fmt.Errorf("must be a role name")
	}

	if role == "" {
		return nil
	}

	if _, ok := ParseRole(role); !ok {
		return fmt.Errorf("must be one of: %s", roleNames())
	}
	return nil
})
