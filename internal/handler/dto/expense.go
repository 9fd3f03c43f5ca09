package dto

import "github.com/ledgerlite/ledgerlite/internal/model"

// ExpenseRequest is the request body for creating or updating an
// expense.
type ExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

// BudgetRequest is the request body for setting a budget.
type BudgetRequest struct {
	Amount float64 `json:"amount"`
}

// BudgetResponse represents a budget in API responses.
type BudgetResponse struct {
	Amount float64 `json:"amount"`
}

// ToExpenseResponse converts an expense to its API representation.
func ToExpenseResponse(e model.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    string(e.Category),
		Date:        e.Date,
	}
}

// ToExpenseListResponse converts a slice of expenses.
func ToExpenseListResponse(expenses []model.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, ToExpenseResponse(e))
	}
	return out
}
