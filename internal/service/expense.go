package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ledgerlite/ledgerlite/internal/metrics"
	"github.com/ledgerlite/ledgerlite/internal/model"
	"github.com/ledgerlite/ledgerlite/internal/repository"
)

// Expense validation errors.
var (
	ErrEmptyDescription = errors.New("description must not be empty")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidCategory  = errors.New("unknown category")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidBudget    = errors.New("budget must not be negative")
	ErrExpenseNotFound  = errors.New("expense not found")
)

// ExpenseInput carries the user-editable fields of an expense.
type ExpenseInput struct {
	Description string
	Amount      float64
	Category    string
	Date        string
}

func (in ExpenseInput) validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return ErrInvalidAmount
	}
	if !model.Category(in.Category).IsValid() {
		return ErrInvalidCategory
	}
	if _, err := time.Parse(model.DateLayout, in.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	Search   string
	Category string
	Start    string
	End      string
}

func (f Filter) matches(e model.Expense) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(f.Search)) {
		return false
	}
	if f.Category != "" && string(e.Category) != f.Category {
		return false
	}
	if f.Start != "" && e.Date < f.Start {
		return false
	}
	if f.End != "" && e.Date > f.End {
		return false
	}
	return true
}

// Summary is the per-user spending overview for the current month.
type Summary struct {
	MonthTotal  float64             `json:"monthTotal"`
	Budget      float64             `json:"budget"`
	PercentUsed float64             `json:"percentUsed"`
	ByCategory  map[string]float64  `json:"byCategory"`
	Alert       *model.Notification `json:"alert,omitempty"`
}

// ExpenseService manages expenses and budgets for a single owner per
// call. Budget alerts are re-evaluated after every mutation that can
// change current-month spend.
type ExpenseService struct {
	repo     *repository.Repository
	notifier *Notifier
	logger   *slog.Logger
	metrics  metrics.Recorder

	// now is injectable for tests pinning the current month.
	now func() time.Time
}

// NewExpenseService creates an ExpenseService.
func NewExpenseService(repo *repository.Repository, notifier *Notifier, logger *slog.Logger, recorder metrics.Recorder) *ExpenseService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ExpenseService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		metrics:  recorder,
		now:      time.Now,
	}
}

// Add validates and stores a new expense. New expenses appear first in
// subsequent listings.
func (s *ExpenseService) Add(ctx context.Context, ownerID string, input ExpenseInput) (model.Expense, error) {
	if err := input.validate(); err != nil {
		return model.Expense{}, err
	}

	expense := model.Expense{
		ID:          ulid.Make().String(),
		Description: input.Description,
		Amount:      input.Amount,
		Category:    model.Category(input.Category),
		Date:        input.Date,
	}

	if err := s.repo.AddExpense(ctx, ownerID, expense); err != nil {
		return model.Expense{}, err
	}

	s.metrics.IncExpenseCreated()
	s.logger.Info("expense_created", "owner_id", ownerID, "expense_id", expense.ID, "amount", expense.Amount)

	if err := s.evaluateBudget(ctx, ownerID); err != nil {
		s.logger.Error("budget evaluation failed", "owner_id", ownerID, "error", err)
	}

	return expense, nil
}

// Update replaces an existing expense in place, keeping its position.
func (s *ExpenseService) Update(ctx context.Context, ownerID, expenseID string, input ExpenseInput) (model.Expense, error) {
	if err := input.validate(); err != nil {
		return model.Expense{}, err
	}

	expense := model.Expense{
		ID:          expenseID,
		Description: input.Description,
		Amount:      input.Amount,
		Category:    model.Category(input.Category),
		Date:        input.Date,
	}

	if err := s.repo.UpdateExpense(ctx, ownerID, expense); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return model.Expense{}, ErrExpenseNotFound
		}
		return model.Expense{}, err
	}

	s.metrics.IncExpenseUpdated()
	s.logger.Info("expense_updated", "owner_id", ownerID, "expense_id", expenseID)

	if err := s.evaluateBudget(ctx, ownerID); err != nil {
		s.logger.Error("budget evaluation failed", "owner_id", ownerID, "error", err)
	}

	return expense, nil
}

// Delete removes an expense by ID.
func (s *ExpenseService) Delete(ctx context.Context, ownerID, expenseID string) error {
	if err := s.repo.DeleteExpense(ctx, ownerID, expenseID); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}

	s.metrics.IncExpenseDeleted()
	s.logger.Info("expense_deleted", "owner_id", ownerID, "expense_id", expenseID)

	if err := s.evaluateBudget(ctx, ownerID); err != nil {
		s.logger.Error("budget evaluation failed", "owner_id", ownerID, "error", err)
	}

	return nil
}

// List returns the owner's expenses matching the filter, newest date
// first. Ties keep their stored (insertion) order.
func (s *ExpenseService) List(ctx context.Context, ownerID string, filter Filter) ([]model.Expense, error) {
	expenses, err := s.repo.ListExpenses(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.Expense, 0, len(expenses))
	for _, e := range expenses {
		if filter.matches(e) {
			filtered = append(filtered, e)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date > filtered[j].Date
	})

	return filtered, nil
}

// MonthTotal sums the owner's expenses that fall in the current
// calendar month.
func (s *ExpenseService) MonthTotal(ctx context.Context, ownerID string) (float64, error) {
	expenses, err := s.repo.ListExpenses(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return monthTotal(expenses, s.now()), nil
}

func monthTotal(expenses []model.Expense, ref time.Time) float64 {
	var total float64
	for _, e := range expenses {
		if e.InMonth(ref) {
			total += e.Amount
		}
	}
	return total
}

// GetSummary builds the current-month overview for the owner.
func (s *ExpenseService) GetSummary(ctx context.Context, ownerID string) (Summary, error) {
	expenses, err := s.repo.ListExpenses(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}
	budget, err := s.repo.GetBudget(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}

	ref := s.now()
	byCategory := make(map[string]float64)
	var total float64
	for _, e := range expenses {
		if !e.InMonth(ref) {
			continue
		}
		total += e.Amount
		byCategory[string(e.Category)] += e.Amount
	}

	summary := Summary{
		MonthTotal: total,
		Budget:     budget,
		ByCategory: byCategory,
	}
	if budget > 0 {
		summary.PercentUsed = total / budget * 100
	}
	if s.notifier != nil {
		s.notifier.Evaluate(ownerID, total, budget)
		if note, ok := s.notifier.Standing(ownerID, budget); ok {
			summary.Alert = &note
		}
	}
	return summary, nil
}

// GetBudget returns the owner's budget, falling back to the configured
// default when none has been set.
func (s *ExpenseService) GetBudget(ctx context.Context, ownerID string) (float64, error) {
	return s.repo.GetBudget(ctx, ownerID)
}

// SetBudget stores a new budget and immediately re-evaluates the
// owner's alert state against it.
func (s *ExpenseService) SetBudget(ctx context.Context, ownerID string, amount float64) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidBudget
	}
	if err := s.repo.SetBudget(ctx, ownerID, amount); err != nil {
		return err
	}

	s.logger.Info("budget_set", "owner_id", ownerID, "amount", amount)

	if err := s.evaluateBudget(ctx, ownerID); err != nil {
		s.logger.Error("budget evaluation failed", "owner_id", ownerID, "error", err)
	}
	return nil
}

func (s *ExpenseService) evaluateBudget(ctx context.Context, ownerID string) error {
	if s.notifier == nil {
		return nil
	}
	expenses, err := s.repo.ListExpenses(ctx, ownerID)
	if err != nil {
		return err
	}
	budget, err := s.repo.GetBudget(ctx, ownerID)
	if err != nil {
		return err
	}
	s.notifier.Evaluate(ownerID, monthTotal(expenses, s.now()), budget)
	return nil
}

// ExportCSV renders the owner's full expense list as CSV. The
// description column is always quoted; the remaining columns are bare.
func (s *ExpenseService) ExportCSV(ctx context.Context, ownerID string) ([]byte, error) {
	expenses, err := s.repo.ListExpenses(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("ID,Description,Amount,Category,Date\n")
	for _, e := range expenses {
		b.WriteString(e.ID)
		b.WriteString(`,"`)
		b.WriteString(strings.ReplaceAll(e.Description, `"`, `""`))
		b.WriteString(`",`)
		b.WriteString(formatAmount(e.Amount))
		b.WriteByte(',')
		b.WriteString(string(e.Category))
		b.WriteByte(',')
		b.WriteString(e.Date)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
