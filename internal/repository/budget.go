package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ledgerlite/ledgerlite/internal/events"
	"github.com/ledgerlite/ledgerlite/internal/kvstore"
)

// GetBudget returns the owner's monthly budget, falling back to the
// configured default when no budget is stored. This is the user-facing
// read; the aggregation layer uses LookupBudget, which does not default.
func (r *Repository) GetBudget(ctx context.Context, ownerID string) (float64, error) {
	budget, ok, err := r.LookupBudget(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return r.defaultBudget, nil
	}
	return budget, nil
}

// LookupBudget returns the stored budget and whether one is present.
// Absent keys report ok=false rather than a default, so callers that
// must skip budget-less users (the over-budget scan) can tell the
// difference.
func (r *Repository) LookupBudget(ctx context.Context, ownerID string) (float64, bool, error) {
	raw, err := r.store.Get(ctx, budgetKey(ownerID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read budget for %s: %w", ownerID, err)
	}

	// Stored as a plain decimal string, not JSON-wrapped.
	budget, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse budget for %s: %w", ownerID, err)
	}
	return budget, true, nil
}

// SetBudget stores the owner's budget as a plain decimal string.
func (r *Repository) SetBudget(ctx context.Context, ownerID string, amount float64) error {
	raw := strconv.FormatFloat(amount, 'f', -1, 64)
	if err := r.store.Set(ctx, budgetKey(ownerID), raw); err != nil {
		return fmt.Errorf("failed to write budget for %s: %w", ownerID, err)
	}

	r.bus.Publish(events.Event{Entity: events.EntityBudget, Op: events.OpUpdated, OwnerID: ownerID})
	return nil
}
