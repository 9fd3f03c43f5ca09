package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/ledgerlite/ledgerlite/internal/events"
	"github.com/ledgerlite/ledgerlite/internal/kvstore"
	"github.com/ledgerlite/ledgerlite/internal/model"
)

const testDefaultBudget = 2000

func newTestRepo(t *testing.T) (*Repository, *kvstore.MemoryStore) {
	t.Helper()

	store := kvstore.NewMemory()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	bus := events.NewBus(logger, nil)
	return New(store, bus, testDefaultBudget), store
}

func TestCreateUser_DuplicateEmailDoesNotMutate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, _ := newTestRepo(t)

	first := model.User{ID: "u1", Email: "a@example.com", PasswordHash: "h1", Role: model.RoleUser}
	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	dup := model.User{ID: "u2", Email: "a@example.com", PasswordHash: "h2", Role: model.RoleAdmin}
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("CreateUser duplicate error = %v, want ErrEmailExists", err)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != "u1" {
		t.Errorf("users collection mutated by failed registration: %+v", users)
	}
}

func TestFindUserByEmail_CaseSensitive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, _ := newTestRepo(t)

	u := model.User{ID: "u1", Email: "Alice@example.com", Role: model.RoleUser}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := repo.FindUserByEmail(ctx, "alice@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("lowercased email matched; lookup must be case-sensitive")
	}
	if _, err := repo.FindUserByEmail(ctx, "Alice@example.com"); err != nil {
		t.Errorf("exact email did not match: %v", err)
	}
}

func TestDeleteUser_CascadesNamespacedKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, store := newTestRepo(t)

	u := model.User{ID: "u1", Email: "a@example.com", Role: model.RoleUser}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := repo.AddExpense(ctx, "u1", model.Expense{ID: "e1", Description: "x", Amount: 1, Category: model.CategoryFood, Date: "2025-01-01"}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if err := repo.SetBudget(ctx, "u1", 500); err != nil {
		t.Fatalf("SetBudget failed: %v", err)
	}

	if err := repo.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := store.Get(ctx, "expenses_u1"); !errors.Is(err, kvstore.ErrKeyNotFound) {
		t.Error("expenses_u1 survived user deletion")
	}
	if _, err := store.Get(ctx, "budget_u1"); !errors.Is(err, kvstore.ErrKeyNotFound) {
		t.Error("budget_u1 survived user deletion")
	}

	users, _ := repo.ListUsers(ctx)
	if len(users) != 0 {
		t.Errorf("users collection not empty after delete: %+v", users)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	if err := repo.DeleteUser(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("DeleteUser(ghost) error = %v, want ErrUserNotFound", err)
	}
}

func TestExpenses_ReadModifyWriteReplaysDeterministically(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, _ := newTestRepo(t)

	e1 := model.Expense{ID: "e1", Description: "coffee", Amount: 3.5, Category: model.CategoryFood, Date: "2025-01-02"}
	e2 := model.Expense{ID: "e2", Description: "bus", Amount: 2, Category: model.CategoryTransport, Date: "2025-01-03"}
	e3 := model.Expense{ID: "e3", Description: "film", Amount: 12, Category: model.CategoryEntertainment, Date: "2025-01-04"}

	if err := repo.AddExpense(ctx, "u1", e1); err != nil {
		t.Fatalf("AddExpense e1: %v", err)
	}
	if err := repo.AddExpense(ctx, "u1", e2); err != nil {
		t.Fatalf("AddExpense e2: %v", err)
	}
	if err := repo.AddExpense(ctx, "u1", e3); err != nil {
		t.Fatalf("AddExpense e3: %v", err)
	}

	// New expenses are prepended.
	got, err := repo.ListExpenses(ctx, "u1")
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(got) != 3 || got[0].ID != "e3" || got[1].ID != "e2" || got[2].ID != "e1" {
		t.Fatalf("unexpected order: %+v", got)
	}

	e2.Amount = 2.5
	if err := repo.UpdateExpense(ctx, "u1", e2); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if err := repo.DeleteExpense(ctx, "u1", "e1"); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}

	got, _ = repo.ListExpenses(ctx, "u1")
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(got))
	}
	if got[0].ID != "e3" || got[1].ID != "e2" || got[1].Amount != 2.5 {
		t.Errorf("sequence did not replay deterministically: %+v", got)
	}
}

func TestUpdateExpense_NotFound(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	err := repo.UpdateExpense(context.Background(), "u1", model.Expense{ID: "ghost"})
	if !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("UpdateExpense error = %v, want ErrExpenseNotFound", err)
	}
}

func TestBudget_DefaultAndPlainDecimalEncoding(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, store := newTestRepo(t)

	// Absent: user-facing read defaults, lookup reports absence.
	budget, err := repo.GetBudget(ctx, "u1")
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if budget != testDefaultBudget {
		t.Errorf("default budget = %v, want %v", budget, testDefaultBudget)
	}
	if _, ok, _ := repo.LookupBudget(ctx, "u1"); ok {
		t.Error("LookupBudget reported a budget for an absent key")
	}

	if err := repo.SetBudget(ctx, "u1", 1234.5); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	// Stored as a bare decimal, not JSON.
	raw, err := store.Get(ctx, "budget_u1")
	if err != nil {
		t.Fatalf("raw budget read: %v", err)
	}
	if raw != "1234.5" {
		t.Errorf("stored budget = %q, want %q", raw, "1234.5")
	}

	budget, ok, err := repo.LookupBudget(ctx, "u1")
	if err != nil || !ok || budget != 1234.5 {
		t.Errorf("LookupBudget = (%v, %v, %v)", budget, ok, err)
	}
}

func TestBudget_MalformedPropagates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, store := newTestRepo(t)

	if err := store.Set(ctx, "budget_u1", "not-a-number"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := repo.LookupBudget(ctx, "u1"); err == nil {
		t.Error("expected parse error for malformed budget")
	}
}

func TestTakeNotification_FirstReadWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, _ := newTestRepo(t)

	note := model.Notification{Message: "over budget", Type: model.NotificationWarning}
	if err := repo.PutNotification(ctx, "u1", note); err != nil {
		t.Fatalf("PutNotification: %v", err)
	}

	got, ok, err := repo.TakeNotification(ctx, "u1")
	if err != nil {
		t.Fatalf("TakeNotification: %v", err)
	}
	if !ok || got != note {
		t.Errorf("TakeNotification = (%+v, %v)", got, ok)
	}

	// Second read: already consumed.
	if _, ok, _ := repo.TakeNotification(ctx, "u1"); ok {
		t.Error("notification survived consumption")
	}
}

func TestPutNotification_OverwritesPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.PutNotification(ctx, "u1", model.Notification{Message: "first", Type: model.NotificationInfo}); err != nil {
		t.Fatal(err)
	}
	if err := repo.PutNotification(ctx, "u1", model.Notification{Message: "second", Type: model.NotificationWarning}); err != nil {
		t.Fatal(err)
	}

	got, ok, _ := repo.TakeNotification(ctx, "u1")
	if !ok || got.Message != "second" {
		t.Errorf("pending notification = (%+v, %v), want the overwrite", got, ok)
	}
}

func TestTakeNotification_CorruptPayloadCleared(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, store := newTestRepo(t)

	if err := store.Set(ctx, "notification_for_u1", "{not json"); err != nil {
		t.Fatal(err)
	}

	_, ok, err := repo.TakeNotification(ctx, "u1")
	if err != nil {
		t.Fatalf("TakeNotification on corrupt payload: %v", err)
	}
	if ok {
		t.Error("corrupt payload reported as present")
	}
	if _, err := store.Get(ctx, "notification_for_u1"); !errors.Is(err, kvstore.ErrKeyNotFound) {
		t.Error("corrupt key was not cleared")
	}
}

func TestSession_RoundTripStripsCredential(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, store := newTestRepo(t)

	u := model.User{ID: "u1", Email: "a@example.com", PasswordHash: "$argon2id$...", Role: model.RoleAdmin}
	if err := repo.SetSession(ctx, u); err != nil {
		t.Fatalf("SetSession: %v", err)
	}

	got, err := repo.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.PasswordHash != "" {
		t.Error("session stored the password hash")
	}
	if got.ID != "u1" || got.Role != model.RoleAdmin {
		t.Errorf("session projection = %+v", got)
	}

	if err := repo.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if _, err := repo.GetSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("GetSession after clear = %v, want ErrNoSession", err)
	}

	// Clearing the session must not touch entity keys.
	if store.Len() != 0 {
		// users key was never written in this test, nothing else should be
		t.Errorf("unexpected keys remain: %d", store.Len())
	}
}
