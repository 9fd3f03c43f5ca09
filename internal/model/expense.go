// Package model defines domain entities for the application.
package model

import "time"

// Category is the fixed set of expense categories.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategoryShopping      Category = "Shopping"
	CategoryOther         Category = "Other"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryUtilities,
		CategoryEntertainment,
		CategoryHealth,
		CategoryShopping,
		CategoryOther,
	}
}

// IsValid checks if the category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryUtilities,
		CategoryEntertainment, CategoryHealth, CategoryShopping, CategoryOther:
		return true
	}
	return false
}

// DateLayout is the calendar-day format expenses are stored with.
// There is no time component.
const DateLayout = "2006-01-02"

// Expense represents a single expense record owned by one user.
type Expense struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Category    Category `json:"category"`
	Date        string   `json:"date"` // YYYY-MM-DD
}

// ParsedDate parses the stored calendar day.
func (e *Expense) ParsedDate() (time.Time, error) {
	return time.Parse(DateLayout, e.Date)
}

// InMonth reports whether the expense falls in ref's calendar month.
// Expenses with unparseable dates are never in any month.
func (e *Expense) InMonth(ref time.Time) bool {
	d, err := e.ParsedDate()
	if err != nil {
		return false
	}
	return d.Month() == ref.Month() && d.Year() == ref.Year()
}

// FullExpense is an expense augmented with its owner's identity.
// Derived by the aggregation layer for admin views; never persisted.
type FullExpense struct {
	Expense
	OwnerEmail string `json:"ownerEmail"`
	OwnerID    string `json:"ownerId"`
}

// OverBudgetInfo describes a user whose current-month spend exceeds
// their budget. Derived, never persisted.
type OverBudgetInfo struct {
	UserID     string  `json:"userId"`
	Email      string  `json:"email"`
	TotalSpent float64 `json:"totalSpent"`
	Budget     float64 `json:"budget"`
}
