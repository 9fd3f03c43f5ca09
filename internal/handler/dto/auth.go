package dto

import "github.com/ledgerlite/ledgerlite/internal/model"

// CredentialsRequest is the request body for both registration and
// login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse represents a user in API responses. It never carries
// the password hash.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	User UserResponse `json:"user"`
	View string       `json:"view"`
}

// ToUserResponse converts a user to its API representation.
func ToUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

// ToUserListResponse converts a slice of users.
func ToUserListResponse(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}
