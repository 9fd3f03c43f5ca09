// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncUserRegistered()
	IncLoginSuccess()
	IncLoginFailure()

	// Expense metrics
	IncExpenseCreated()
	IncExpenseUpdated()
	IncExpenseDeleted()

	// Admin metrics
	IncUserDeleted()
	IncAdminAlertSent()

	// Notification engine metrics
	IncBudgetAlertEmitted(class string) // class: "approaching" or "exceeded"
	IncPendingNotificationConsumed()

	// Change event bus metrics
	IncChangeEventPublished(status string) // status: "delivered" or "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
