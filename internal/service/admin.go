package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ledgerlite/ledgerlite/internal/events"
	"github.com/ledgerlite/ledgerlite/internal/metrics"
	"github.com/ledgerlite/ledgerlite/internal/model"
	"github.com/ledgerlite/ledgerlite/internal/repository"
)

// Admin errors.
var (
	ErrSelfDelete   = errors.New("administrators cannot delete their own account")
	ErrUserNotFound = errors.New("user not found")
)

// adminAlertMessage is what a user sees after an administrator flags
// their overspending.
const adminAlertMessage = "An administrator has noted that you are over your monthly budget. Please review your expenses."

// Overview is the admin landing aggregate.
type Overview struct {
	TotalUsers    int     `json:"totalUsers"`
	TotalExpenses float64 `json:"totalExpenses"`
	AverageBudget float64 `json:"averageBudget"`
}

// AdminService aggregates data across all users. The all-expenses view
// is cached and invalidated by change events instead of being rebuilt
// on every call.
type AdminService struct {
	repo     *repository.Repository
	notifier *Notifier
	logger   *slog.Logger
	metrics  metrics.Recorder

	// now is injectable for tests pinning the current month.
	now func() time.Time

	cacheMu    sync.Mutex
	cached     []model.FullExpense
	cacheValid bool

	sub  *events.Subscription
	done chan struct{}
}

// NewAdminService creates an AdminService and starts watching the bus
// for changes that invalidate its cache.
func NewAdminService(repo *repository.Repository, bus *events.Bus, notifier *Notifier, logger *slog.Logger, recorder metrics.Recorder) *AdminService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	s := &AdminService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		metrics:  recorder,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if bus != nil {
		s.sub = bus.Subscribe(events.DefaultBuffer)
		go s.watch()
	}
	return s
}

func (s *AdminService) watch() {
	defer close(s.done)
	for ev := range s.sub.C {
		switch ev.Entity {
		case events.EntityUser, events.EntityExpense:
			s.invalidate()
		}
	}
}

func (s *AdminService) invalidate() {
	s.cacheMu.Lock()
	s.cacheValid = false
	s.cached = nil
	s.cacheMu.Unlock()
}

// Close detaches the service from the event bus.
func (s *AdminService) Close() {
	if s.sub == nil {
		return
	}
	s.sub.Close()
	<-s.done
}

// Users lists every account with credentials stripped.
func (s *AdminService) Users(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out, nil
}

// AllExpenses returns every regular user's expenses with the owner
// attached, in stored user order then stored expense order. Admin
// accounts' own expenses are excluded.
func (s *AdminService) AllExpenses(ctx context.Context) ([]model.FullExpense, error) {
	s.cacheMu.Lock()
	if s.cacheValid {
		cached := s.cached
		s.cacheMu.Unlock()
		return cached, nil
	}
	s.cacheMu.Unlock()

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	all := make([]model.FullExpense, 0)
	for _, u := range users {
		if u.IsAdmin() {
			continue
		}
		expenses, err := s.repo.ListExpenses(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range expenses {
			all = append(all, model.FullExpense{
				Expense:    e,
				OwnerEmail: u.Email,
				OwnerID:    u.ID,
			})
		}
	}

	s.cacheMu.Lock()
	s.cached = all
	s.cacheValid = true
	s.cacheMu.Unlock()

	return all, nil
}

// OverBudget reports users whose current-month spend strictly exceeds
// their budget. Users with no budget set, or a budget of exactly zero,
// are never reported. The scan covers every account except the
// requesting admin's own.
func (s *AdminService) OverBudget(ctx context.Context, adminID string) ([]model.OverBudgetInfo, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	ref := s.now()
	out := make([]model.OverBudgetInfo, 0)
	for _, u := range users {
		if u.ID == adminID {
			continue
		}
		budget, ok, err := s.repo.LookupBudget(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if !ok || budget == 0 {
			continue
		}
		expenses, err := s.repo.ListExpenses(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		spent := monthTotal(expenses, ref)
		if spent > budget {
			out = append(out, model.OverBudgetInfo{
				UserID:     u.ID,
				Email:      u.Email,
				TotalSpent: spent,
				Budget:     budget,
			})
		}
	}
	return out, nil
}

// AverageBudget is the mean of all non-zero budgets across every
// account but the requesting admin's; zero when no user has one set.
func (s *AdminService) AverageBudget(ctx context.Context, adminID string) (float64, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	var sum float64
	var count int
	for _, u := range users {
		if u.ID == adminID {
			continue
		}
		budget, ok, err := s.repo.LookupBudget(ctx, u.ID)
		if err != nil {
			return 0, err
		}
		if !ok || budget == 0 {
			continue
		}
		sum += budget
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

// GetOverview builds the admin landing aggregate. The requesting admin
// is not counted among total users.
func (s *AdminService) GetOverview(ctx context.Context, adminID string) (Overview, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return Overview{}, err
	}
	all, err := s.AllExpenses(ctx)
	if err != nil {
		return Overview{}, err
	}
	avg, err := s.AverageBudget(ctx, adminID)
	if err != nil {
		return Overview{}, err
	}

	var total float64
	for _, e := range all {
		total += e.Amount
	}

	count := 0
	for _, u := range users {
		if u.ID != adminID {
			count++
		}
	}

	return Overview{
		TotalUsers:    count,
		TotalExpenses: total,
		AverageBudget: avg,
	}, nil
}

// DeleteUser removes an account and its expenses and budget. An admin
// can never delete themselves, regardless of what remains.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, targetID string) error {
	if adminID == targetID {
		return ErrSelfDelete
	}
	if err := s.repo.DeleteUser(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if s.notifier != nil {
		s.notifier.Reset(targetID)
	}
	s.metrics.IncUserDeleted()
	s.logger.Info("user_deleted", "admin_id", adminID, "user_id", targetID)
	return nil
}

// DeleteExpense removes a single expense from any user's list.
func (s *AdminService) DeleteExpense(ctx context.Context, ownerID, expenseID string) error {
	if err := s.repo.DeleteExpense(ctx, ownerID, expenseID); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	s.metrics.IncExpenseDeleted()
	s.logger.Info("expense_deleted", "owner_id", ownerID, "expense_id", expenseID, "by", "admin")
	return nil
}

// SendAlert stores the over-budget notice for the target user,
// replacing any unconsumed one.
func (s *AdminService) SendAlert(ctx context.Context, targetID string) error {
	if _, err := s.repo.FindUserByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	note := model.Notification{
		Message: adminAlertMessage,
		Type:    model.NotificationWarning,
	}
	if err := s.repo.PutNotification(ctx, targetID, note); err != nil {
		return err
	}
	s.metrics.IncAdminAlertSent()
	s.logger.Info("admin_alert_sent", "user_id", targetID)
	return nil
}
