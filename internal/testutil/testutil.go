// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/ledgerlite/ledgerlite/internal/kvstore"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// CleanStore removes the listed keys from a shared store. Only exact
// keys are removable through the Store interface, so callers pass the
// concrete keys their test touched.
func CleanStore(ctx context.Context, t testing.TB, store kvstore.Store, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if err := store.Remove(ctx, key); err != nil {
			t.Fatalf("failed to clean key %q: %v", key, err)
		}
	}
}
