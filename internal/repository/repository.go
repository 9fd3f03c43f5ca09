// Package repository provides the data-access layer. Each entity
// collection maps onto one or more keys in the flat key-value store;
// all key strings are constructed here and nowhere else, so the store
// schema has a single choke point.
//
// Every mutation is read-modify-write: the full collection is read,
// transformed in memory, and written back whole. Two concurrent
// writers against the same key race under last-write-wins.
package repository

import (
	"context"

	"github.com/ledgerlite/ledgerlite/internal/events"
	"github.com/ledgerlite/ledgerlite/internal/kvstore"
)

// Store key schema. The users collection is global; per-user data is
// namespaced by owner identifier.
const (
	usersKey   = "users"
	sessionKey = "currentUser"
)

func expensesKey(ownerID string) string {
	return "expenses_" + ownerID
}

func budgetKey(ownerID string) string {
	return "budget_" + ownerID
}

func notificationKey(ownerID string) string {
	return "notification_for_" + ownerID
}

// Repository provides typed access to all entity collections.
type Repository struct {
	store         kvstore.Store
	bus           *events.Bus
	defaultBudget float64
}

// New creates a Repository over the given store. Successful mutations
// are published on bus.
func New(store kvstore.Store, bus *events.Bus, defaultBudget float64) *Repository {
	return &Repository{
		store:         store,
		bus:           bus,
		defaultBudget: defaultBudget,
	}
}

// Ping checks store connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
