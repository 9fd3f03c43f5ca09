package handler

import (
	"log/slog"
	"net/http"

	"github.com/ledgerlite/ledgerlite/internal/auth"
	"github.com/ledgerlite/ledgerlite/internal/service"
)

// NotificationHandler serves the one-shot pending notification.
type NotificationHandler struct {
	notifier *service.Notifier
	logger   *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifier *service.Notifier, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// Pending handles GET /api/v1/notifications/pending. Reading a
// notification consumes it; a second read returns 204.
func (h *NotificationHandler) Pending(w http.ResponseWriter, r *http.Request) {
	note, ok, err := h.notifier.TakePending(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
