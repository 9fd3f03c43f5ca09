package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ledgerlite/ledgerlite/internal/events"
	"github.com/ledgerlite/ledgerlite/internal/kvstore"
	"github.com/ledgerlite/ledgerlite/internal/model"
)

// ErrExpenseNotFound indicates the expense is absent from the owner's collection.
var ErrExpenseNotFound = errors.New("expense not found")

// ListExpenses returns the owner's expense collection in stored order.
// An absent key decodes to an empty collection.
func (r *Repository) ListExpenses(ctx context.Context, ownerID string) ([]model.Expense, error) {
	raw, err := r.store.Get(ctx, expensesKey(ownerID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return []model.Expense{}, nil
		}
		return nil, fmt.Errorf("failed to read expenses for %s: %w", ownerID, err)
	}

	var expenses []model.Expense
	if err := json.Unmarshal([]byte(raw), &expenses); err != nil {
		return nil, fmt.Errorf("failed to decode expenses for %s: %w", ownerID, err)
	}
	return expenses, nil
}

// AddExpense prepends a new expense to the owner's collection
// (newest entries are stored first).
func (r *Repository) AddExpense(ctx context.Context, ownerID string, expense model.Expense) error {
	expenses, err := r.ListExpenses(ctx, ownerID)
	if err != nil {
		return err
	}

	expenses = append([]model.Expense{expense}, expenses...)
	if err := r.saveExpenses(ctx, ownerID, expenses); err != nil {
		return err
	}

	r.bus.Publish(events.Event{Entity: events.EntityExpense, Op: events.OpCreated, OwnerID: ownerID})
	return nil
}

// UpdateExpense replaces the expense with the same ID in place.
func (r *Repository) UpdateExpense(ctx context.Context, ownerID string, expense model.Expense) error {
	expenses, err := r.ListExpenses(ctx, ownerID)
	if err != nil {
		return err
	}

	found := false
	for i := range expenses {
		if expenses[i].ID == expense.ID {
			expenses[i] = expense
			found = true
			break
		}
	}
	if !found {
		return ErrExpenseNotFound
	}

	if err := r.saveExpenses(ctx, ownerID, expenses); err != nil {
		return err
	}

	r.bus.Publish(events.Event{Entity: events.EntityExpense, Op: events.OpUpdated, OwnerID: ownerID})
	return nil
}

// DeleteExpense removes the expense with the given ID from the owner's collection.
func (r *Repository) DeleteExpense(ctx context.Context, ownerID, expenseID string) error {
	expenses, err := r.ListExpenses(ctx, ownerID)
	if err != nil {
		return err
	}

	kept := expenses[:0]
	found := false
	for _, e := range expenses {
		if e.ID == expenseID {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrExpenseNotFound
	}

	if err := r.saveExpenses(ctx, ownerID, kept); err != nil {
		return err
	}

	r.bus.Publish(events.Event{Entity: events.EntityExpense, Op: events.OpDeleted, OwnerID: ownerID})
	return nil
}

func (r *Repository) saveExpenses(ctx context.Context, ownerID string, expenses []model.Expense) error {
	data, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("failed to encode expenses for %s: %w", ownerID, err)
	}
	if err := r.store.Set(ctx, expensesKey(ownerID), string(data)); err != nil {
		return fmt.Errorf("failed to write expenses for %s: %w", ownerID, err)
	}
	return nil
}
