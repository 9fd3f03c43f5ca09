package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ledgerlite/ledgerlite/internal/kvstore"
	"github.com/ledgerlite/ledgerlite/internal/model"
)

// ErrNoSession indicates no session is currently stored.
var ErrNoSession = errors.New("no active session")

// GetSession returns the current session user, a password-stripped
// projection of a users-collection record.
func (r *Repository) GetSession(ctx context.Context) (*model.User, error) {
	raw, err := r.store.Get(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &user, nil
}

// SetSession stores user as the current session. The credential is
// stripped before writing; the session is a projection, not an owning
// copy of the user record.
func (r *Repository) SetSession(ctx context.Context, user model.User) error {
	data, err := json.Marshal(user.Sanitized())
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.store.Set(ctx, sessionKey, string(data)); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// ClearSession removes the session. No entity collection is touched.
func (r *Repository) ClearSession(ctx context.Context) error {
	if err := r.store.Remove(ctx, sessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
