package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncExpenseCreated is a no-op.
func (n *NoopRecorder) IncExpenseCreated() {}

// IncExpenseUpdated is a no-op.
func (n *NoopRecorder) IncExpenseUpdated() {}

// IncExpenseDeleted is a no-op.
func (n *NoopRecorder) IncExpenseDeleted() {}

// IncUserDeleted is a no-op.
func (n *NoopRecorder) IncUserDeleted() {}

// IncAdminAlertSent is a no-op.
func (n *NoopRecorder) IncAdminAlertSent() {}

// IncBudgetAlertEmitted is a no-op.
func (n *NoopRecorder) IncBudgetAlertEmitted(class string) {}

// IncPendingNotificationConsumed is a no-op.
func (n *NoopRecorder) IncPendingNotificationConsumed() {}

// IncChangeEventPublished is a no-op.
func (n *NoopRecorder) IncChangeEventPublished(status string) {}
