// Package model defines domain entities for the application.
package model

// NotificationType classifies a user-facing notification.
type NotificationType string

const (
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
)

// Notification is a (message, severity) pair surfaced to one user.
// At most one pending notification exists per user at a time; a second
// admin alert overwrites the first before consumption.
type Notification struct {
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}
