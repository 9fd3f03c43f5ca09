package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerlite/ledgerlite/internal/auth"
	"github.com/ledgerlite/ledgerlite/internal/handler/dto"
	"github.com/ledgerlite/ledgerlite/internal/service"
)

// ExpenseHandler handles expense, budget, and summary endpoints for
// the authenticated user.
type ExpenseHandler struct {
	svc    *service.ExpenseService
	logger *slog.Logger
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(svc *service.ExpenseService, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := service.Filter{
		Search:   query.Get("search"),
		Category: query.Get("category"),
		Start:    query.Get("start"),
		End:      query.Get("end"),
	}

	expenses, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToExpenseListResponse(expenses))
}

// Create handles POST /api/v1/expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	expense, err := h.svc.Add(r.Context(), auth.UserIDFromContext(r.Context()), service.ExpenseInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToExpenseResponse(expense))
}

// Update handles PUT /api/v1/expenses/{id}.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Expense ID is required")
		return
	}

	var req dto.ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	expense, err := h.svc.Update(r.Context(), auth.UserIDFromContext(r.Context()), id, service.ExpenseInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToExpenseResponse(expense))
}

// Delete handles DELETE /api/v1/expenses/{id}.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Expense ID is required")
		return
	}

	if err := h.svc.Delete(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/v1/expenses/export.
func (h *ExpenseHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportCSV(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GetBudget handles GET /api/v1/budget.
func (h *ExpenseHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	amount, err := h.svc.GetBudget(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BudgetResponse{Amount: amount})
}

// SetBudget handles PUT /api/v1/budget.
func (h *ExpenseHandler) SetBudget(w http.ResponseWriter, r *http.Request) {
	var req dto.BudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.SetBudget(r.Context(), auth.UserIDFromContext(r.Context()), req.Amount); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BudgetResponse{Amount: req.Amount})
}

// Summary handles GET /api/v1/summary.
func (h *ExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetSummary(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleServiceError maps service errors to HTTP responses.
func (h *ExpenseHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyDescription):
		writeError(w, http.StatusBadRequest, "EMPTY_DESCRIPTION", "Description must not be empty")
	case errors.Is(err, service.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero")
	case errors.Is(err, service.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown category")
	case errors.Is(err, service.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "Date must be in YYYY-MM-DD format")
	case errors.Is(err, service.ErrInvalidBudget):
		writeError(w, http.StatusBadRequest, "INVALID_BUDGET", "Budget must not be negative")
	case errors.Is(err, service.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, "EXPENSE_NOT_FOUND", "Expense not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
