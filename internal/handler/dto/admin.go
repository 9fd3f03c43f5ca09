package dto

import "github.com/ledgerlite/ledgerlite/internal/model"

// FullExpenseResponse is an expense with its owner attached, for admin
// views.
type FullExpenseResponse struct {
	ExpenseResponse
	OwnerEmail string `json:"ownerEmail"`
	OwnerID    string `json:"ownerId"`
}

// OverBudgetResponse reports one user spending past their budget this
// month.
type OverBudgetResponse struct {
	UserID     string  `json:"userId"`
	Email      string  `json:"email"`
	TotalSpent float64 `json:"totalSpent"`
	Budget     float64 `json:"budget"`
}

// ToFullExpenseListResponse converts admin aggregate expenses.
func ToFullExpenseListResponse(expenses []model.FullExpense) []FullExpenseResponse {
	out := make([]FullExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, FullExpenseResponse{
			ExpenseResponse: ToExpenseResponse(e.Expense),
			OwnerEmail:      e.OwnerEmail,
			OwnerID:         e.OwnerID,
		})
	}
	return out
}

// ToOverBudgetListResponse converts over-budget entries.
func ToOverBudgetListResponse(infos []model.OverBudgetInfo) []OverBudgetResponse {
	out := make([]OverBudgetResponse, 0, len(infos))
	for _, in := range infos {
		out = append(out, OverBudgetResponse{
			UserID:     in.UserID,
			Email:      in.Email,
			TotalSpent: in.TotalSpent,
			Budget:     in.Budget,
		})
	}
	return out
}
