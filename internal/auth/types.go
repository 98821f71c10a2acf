package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 64

// IsValidUsername checks if a username meets format requirements.
// Usernames must be 1-64 characters, alphanumeric with dots, hyphens, underscores.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleUser is a household member. Sees and controls public robots
	// plus robots they own. Zero robots = read-only fleet list of
	// public units.
	RoleUser Role = "user"

	// RoleSupport is field-support staff. Sees and controls every robot
	// for diagnostics but cannot manage accounts.
	RoleSupport Role = "support"

	// RoleAdmin has full control: robots, users, audit. Bypasses
	// ownership scoping.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of valid user roles.
var ValidRoles = []Role{RoleUser, RoleSupport, RoleAdmin}

// IsValidRole returns true if the role is a valid role for a user account.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents an authenticated account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUsernameExists     = errors.New("username already exists")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrForbidden          = errors.New("insufficient permissions")
)
