package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerlite/ledgerlite/internal/auth"
	"github.com/ledgerlite/ledgerlite/internal/handler/dto"
	"github.com/ledgerlite/ledgerlite/internal/service"
)

// AdminHandler handles cross-user aggregation and management
// endpoints. All routes behind it require the admin role.
type AdminHandler struct {
	svc    *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		logger: logger,
	}
}

// Users handles GET /api/v1/admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// DeleteUser handles DELETE /api/v1/admin/users/{id}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	if err := h.svc.DeleteUser(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AllExpenses handles GET /api/v1/admin/expenses.
func (h *AdminHandler) AllExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.AllExpenses(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToFullExpenseListResponse(expenses))
}

// DeleteExpense handles DELETE /api/v1/admin/users/{userId}/expenses/{expenseId}.
func (h *AdminHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	expenseID := chi.URLParam(r, "expenseId")
	if userID == "" || expenseID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User and expense IDs are required")
		return
	}

	if err := h.svc.DeleteExpense(r.Context(), userID, expenseID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Overview handles GET /api/v1/admin/overview.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.GetOverview(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// OverBudget handles GET /api/v1/admin/over-budget.
func (h *AdminHandler) OverBudget(w http.ResponseWriter, r *http.Request) {
	infos, err := h.svc.OverBudget(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToOverBudgetListResponse(infos))
}

// SendAlert handles POST /api/v1/admin/users/{id}/alert.
func (h *AdminHandler) SendAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	if err := h.svc.SendAlert(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "notification sent"})
}

// handleServiceError maps service errors to HTTP responses.
func (h *AdminHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSelfDelete):
		writeError(w, http.StatusForbidden, "SELF_DELETE", "Administrators cannot delete their own account")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, "EXPENSE_NOT_FOUND", "Expense not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
