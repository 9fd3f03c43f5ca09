// Package model defines domain entities for the application.
package model

// Role distinguishes regular users from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is a known value.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account.
// The password hash is stored in the global users collection but is
// stripped before the user is placed in the session or returned by the API.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password,omitempty"`
	Role         Role   `json:"role"`
}

// Sanitized returns a copy of the user with the credential removed.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
