package service

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ledgerlite/ledgerlite/internal/events"
	"github.com/ledgerlite/ledgerlite/internal/kvstore"
	"github.com/ledgerlite/ledgerlite/internal/repository"
)

const testDefaultBudget = 2000

type testEnv struct {
	store    *kvstore.MemoryStore
	bus      *events.Bus
	repo     *repository.Repository
	notifier *Notifier
	sessions *SessionService
	expenses *ExpenseService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store := kvstore.NewMemory()
	bus := events.NewBus(logger, nil)
	repo := repository.New(store, bus, testDefaultBudget)
	notifier := NewNotifier(repo, logger, nil)

	env := &testEnv{
		store:    store,
		bus:      bus,
		repo:     repo,
		notifier: notifier,
		sessions: NewSessionService(repo, notifier, logger, nil),
		expenses: NewExpenseService(repo, notifier, logger, nil),
		admin:    NewAdminService(repo, bus, notifier, logger, nil),
	}
	t.Cleanup(env.admin.Close)
	return env
}

// pinNow fixes both clocks to the given instant.
func (e *testEnv) pinNow(at time.Time) {
	e.expenses.now = func() time.Time { return at }
	e.admin.now = func() time.Time { return at }
}
