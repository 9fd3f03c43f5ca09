package kvstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_GetAbsent(t *testing.T) {
	t.Parallel()

	s := NewMemory()

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryStore_SetGetRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemory()

	if err := s.Set(ctx, "users", `[]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(ctx, "users")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != `[]` {
		t.Errorf("Get = %q, want %q", got, `[]`)
	}

	// Overwrite is last-write-wins
	if err := s.Set(ctx, "users", `[{"id":"u1"}]`); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	got, _ = s.Get(ctx, "users")
	if got != `[{"id":"u1"}]` {
		t.Errorf("Get after overwrite = %q", got)
	}

	if err := s.Remove(ctx, "users"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := s.Get(ctx, "users"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after Remove error = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryStore_RemoveAbsent(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	if err := s.Remove(context.Background(), "nope"); err != nil {
		t.Errorf("Remove of absent key returned error: %v", err)
	}
}
