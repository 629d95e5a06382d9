package model

import "time"

// Role distinguishes the two account namespaces. A username is unique
// within a role, so the same name may exist as both a player and a
// developer.
type Role string

const (
	RolePlayer    Role = "player"
	RoleDeveloper Role = "developer"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleDeveloper
}

// Identity is a (role, username) pair. At most one live session may hold
// an identity at any time.
type Identity struct {
	Role     Role
	Username string
}

// User is a registered account
type User struct {
	Username     string
	PasswordHash string // bcrypt hash
	Role         Role
	CreatedAt    time.Time
}
