// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse carries a simple confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
