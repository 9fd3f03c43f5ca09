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

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// ListUsers returns the full users collection in stored order.
// An absent key decodes to an empty collection.
func (r *Repository) ListUsers(ctx context.Context) ([]model.User, error) {
	raw, err := r.store.Get(ctx, usersKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return []model.User{}, nil
		}
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// FindUserByEmail retrieves a user by exact email match (case-sensitive).
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindUserByID retrieves a user by identifier.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// CreateUser appends a new user to the collection.
// Fails with ErrEmailExists if the email is already present; the
// collection is not mutated in that case.
func (r *Repository) CreateUser(ctx context.Context, user model.User) error {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].Email == user.Email {
			return ErrEmailExists
		}
	}

	users = append(users, user)
	if err := r.saveUsers(ctx, users); err != nil {
		return err
	}

	r.bus.Publish(events.Event{Entity: events.EntityUser, Op: events.OpCreated, OwnerID: user.ID})
	return nil
}

// DeleteUser removes a user and cascades to their namespaced data:
// the expenses and budget keys are deleted along with the user record.
// Orphaned keys are never created through this path; it is the sole
// user-removal path.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return err
	}

	kept := users[:0]
	found := false
	for _, u := range users {
		if u.ID == id {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return ErrUserNotFound
	}

	if err := r.saveUsers(ctx, kept); err != nil {
		return err
	}

	// Cascade delete of the user's namespaced keys.
	if err := r.store.Remove(ctx, expensesKey(id)); err != nil {
		return fmt.Errorf("failed to remove expenses for %s: %w", id, err)
	}
	if err := r.store.Remove(ctx, budgetKey(id)); err != nil {
		return fmt.Errorf("failed to remove budget for %s: %w", id, err)
	}

	r.bus.Publish(events.Event{Entity: events.EntityUser, Op: events.OpDeleted, OwnerID: id})
	return nil
}

func (r *Repository) saveUsers(ctx context.Context, users []model.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	if err := r.store.Set(ctx, usersKey, string(data)); err != nil {
		return fmt.Errorf("failed to write users: %w", err)
	}
	return nil
}
