package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered                uint64 `json:"users_registered"`
	LoginSuccesses                 uint64 `json:"login_successes"`
	LoginFailures                  uint64 `json:"login_failures"`
	ExpensesCreated                uint64 `json:"expenses_created"`
	ExpensesUpdated                uint64 `json:"expenses_updated"`
	ExpensesDeleted                uint64 `json:"expenses_deleted"`
	UsersDeleted                   uint64 `json:"users_deleted"`
	AdminAlertsSent                uint64 `json:"admin_alerts_sent"`
	ApproachingAlertsEmitted       uint64 `json:"approaching_alerts_emitted"`
	ExceededAlertsEmitted          uint64 `json:"exceeded_alerts_emitted"`
	PendingNotificationsConsumed   uint64 `json:"pending_notifications_consumed"`
	ChangeEventsDelivered          uint64 `json:"change_events_delivered"`
	ChangeEventsDropped            uint64 `json:"change_events_dropped"`
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered              uint64
	loginSuccesses               uint64
	loginFailures                uint64
	expensesCreated              uint64
	expensesUpdated              uint64
	expensesDeleted              uint64
	usersDeleted                 uint64
	adminAlertsSent              uint64
	approachingAlertsEmitted     uint64
	exceededAlertsEmitted        uint64
	pendingNotificationsConsumed uint64
	changeEventsDelivered        uint64
	changeEventsDropped          uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:              atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:               atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:                atomic.LoadUint64(&m.loginFailures),
		ExpensesCreated:              atomic.LoadUint64(&m.expensesCreated),
		ExpensesUpdated:              atomic.LoadUint64(&m.expensesUpdated),
		ExpensesDeleted:              atomic.LoadUint64(&m.expensesDeleted),
		UsersDeleted:                 atomic.LoadUint64(&m.usersDeleted),
		AdminAlertsSent:              atomic.LoadUint64(&m.adminAlertsSent),
		ApproachingAlertsEmitted:     atomic.LoadUint64(&m.approachingAlertsEmitted),
		ExceededAlertsEmitted:        atomic.LoadUint64(&m.exceededAlertsEmitted),
		PendingNotificationsConsumed: atomic.LoadUint64(&m.pendingNotificationsConsumed),
		ChangeEventsDelivered:        atomic.LoadUint64(&m.changeEventsDelivered),
		ChangeEventsDropped:          atomic.LoadUint64(&m.changeEventsDropped),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncExpenseCreated increments the expense created counter.
func (m *InMemoryRecorder) IncExpenseCreated() {
	atomic.AddUint64(&m.expensesCreated, 1)
}

// IncExpenseUpdated increments the expense updated counter.
func (m *InMemoryRecorder) IncExpenseUpdated() {
	atomic.AddUint64(&m.expensesUpdated, 1)
}

// IncExpenseDeleted increments the expense deleted counter.
func (m *InMemoryRecorder) IncExpenseDeleted() {
	atomic.AddUint64(&m.expensesDeleted, 1)
}

// IncUserDeleted increments the user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncAdminAlertSent increments the admin alert counter.
func (m *InMemoryRecorder) IncAdminAlertSent() {
	atomic.AddUint64(&m.adminAlertsSent, 1)
}

// IncBudgetAlertEmitted increments the counter for the alert class.
func (m *InMemoryRecorder) IncBudgetAlertEmitted(class string) {
	switch class {
	case "approaching":
		atomic.AddUint64(&m.approachingAlertsEmitted, 1)
	case "exceeded":
		atomic.AddUint64(&m.exceededAlertsEmitted, 1)
	}
}

// IncPendingNotificationConsumed increments the consumption counter.
func (m *InMemoryRecorder) IncPendingNotificationConsumed() {
	atomic.AddUint64(&m.pendingNotificationsConsumed, 1)
}

// IncChangeEventPublished increments the counter for the delivery status.
func (m *InMemoryRecorder) IncChangeEventPublished(status string) {
	switch status {
	case "delivered":
		atomic.AddUint64(&m.changeEventsDelivered, 1)
	case "dropped":
		atomic.AddUint64(&m.changeEventsDropped, 1)
	}
}
