package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/ledgerlite/ledgerlite/internal/metrics"
	"github.com/ledgerlite/ledgerlite/internal/model"
	"github.com/ledgerlite/ledgerlite/internal/repository"
)

// AlertClass names the budget alert state a user is in. It is carried
// explicitly rather than recovered from message text.
type AlertClass string

const (
	AlertNone        AlertClass = "none"
	AlertApproaching AlertClass = "approaching"
	AlertExceeded    AlertClass = "exceeded"
)

// Classify maps current-month spend against a budget. A budget of zero
// (or less) never alerts.
func Classify(spent, budget float64) AlertClass {
	if budget <= 0 {
		return AlertNone
	}
	ratio := spent / budget
	switch {
	case ratio >= 1.0:
		return AlertExceeded
	case ratio >= 0.9:
		return AlertApproaching
	default:
		return AlertNone
	}
}

// Notifier tracks the standing budget alert per user and hands out the
// one-shot admin notifications persisted by the repository. Budget
// alerts live in memory only; they are recomputed from spend on every
// evaluation, so a restart merely re-derives them.
type Notifier struct {
	mu    sync.Mutex
	state map[string]AlertClass

	repo    *repository.Repository
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewNotifier creates a Notifier.
func NewNotifier(repo *repository.Repository, logger *slog.Logger, recorder metrics.Recorder) *Notifier {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Notifier{
		state:   make(map[string]AlertClass),
		repo:    repo,
		logger:  logger,
		metrics: recorder,
	}
}

// Evaluate updates the user's alert class from current spend and
// budget. It returns the new class and, when the class just changed to
// an alerting one, the notification to show. Dropping back below 90%
// clears the standing alert silently.
func (n *Notifier) Evaluate(ownerID string, spent, budget float64) (AlertClass, *model.Notification) {
	class := Classify(spent, budget)

	n.mu.Lock()
	prev := n.state[ownerID]
	if class == AlertNone {
		delete(n.state, ownerID)
	} else {
		n.state[ownerID] = class
	}
	n.mu.Unlock()

	if class == prev || class == AlertNone {
		return class, nil
	}

	note := budgetAlert(class, budget)
	n.metrics.IncBudgetAlertEmitted(string(class))
	n.logger.Info("budget_alert", "owner_id", ownerID, "class", string(class))
	return class, &note
}

// Standing returns the user's current alert, if any, rebuilt from the
// tracked class.
func (n *Notifier) Standing(ownerID string, budget float64) (model.Notification, bool) {
	n.mu.Lock()
	class := n.state[ownerID]
	n.mu.Unlock()

	if class == AlertNone || class == "" {
		return model.Notification{}, false
	}
	return budgetAlert(class, budget), true
}

// Reset drops any tracked alert state for the user. Called when the
// user logs out or is deleted.
func (n *Notifier) Reset(ownerID string) {
	n.mu.Lock()
	delete(n.state, ownerID)
	n.mu.Unlock()
}

// TakePending consumes the one-shot admin notification for the user.
func (n *Notifier) TakePending(ctx context.Context, ownerID string) (model.Notification, bool, error) {
	note, ok, err := n.repo.TakeNotification(ctx, ownerID)
	if err != nil {
		return model.Notification{}, false, err
	}
	if ok {
		n.metrics.IncPendingNotificationConsumed()
		n.logger.Info("pending_notification_consumed", "owner_id", ownerID)
	}
	return note, ok, nil
}

func budgetAlert(class AlertClass, budget float64) model.Notification {
	if class == AlertExceeded {
		return model.Notification{
			Message: fmt.Sprintf("Warning: You've exceeded your budget of %s.", FormatUSD(budget)),
			Type:    model.NotificationWarning,
		}
	}
	return model.Notification{
		Message: "You are approaching your budget limit, with over 90% spent.",
		Type:    model.NotificationWarning,
	}
}

// FormatUSD renders an amount the way en-US currency formatting does:
// dollar sign, comma-grouped integer part, two decimal places.
func FormatUSD(amount float64) string {
	neg := amount < 0 || math.Signbit(amount)
	cents := int64(math.Round(math.Abs(amount) * 100))
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	fmt.Fprintf(&b, ".%02d", frac)
	return b.String()
}
