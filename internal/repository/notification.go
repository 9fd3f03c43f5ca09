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

// PutNotification queues a pending notification for the target user,
// overwriting any unconsumed one. At most one pending notification
// exists per user.
func (r *Repository) PutNotification(ctx context.Context, ownerID string, note model.Notification) error {
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to encode notification for %s: %w", ownerID, err)
	}
	if err := r.store.Set(ctx, notificationKey(ownerID), string(data)); err != nil {
		return fmt.Errorf("failed to write notification for %s: %w", ownerID, err)
	}

	r.bus.Publish(events.Event{Entity: events.EntityNotification, Op: events.OpCreated, OwnerID: ownerID})
	return nil
}

// TakeNotification consumes the pending notification for the user:
// the record is deleted as part of the read (first-read-wins). A
// malformed payload is treated as absent and the corrupt key cleared.
func (r *Repository) TakeNotification(ctx context.Context, ownerID string) (model.Notification, bool, error) {
	key := notificationKey(ownerID)

	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return model.Notification{}, false, nil
		}
		return model.Notification{}, false, fmt.Errorf("failed to read notification for %s: %w", ownerID, err)
	}

	var note model.Notification
	if err := json.Unmarshal([]byte(raw), &note); err != nil {
		// Corrupt payload: clear it and report absent.
		_ = r.store.Remove(ctx, key)
		return model.Notification{}, false, nil
	}

	if err := r.store.Remove(ctx, key); err != nil {
		return model.Notification{}, false, fmt.Errorf("failed to consume notification for %s: %w", ownerID, err)
	}
	return note, true, nil
}
