package handler

import (
	"fmt"
	"net/http"

	"github.com/ledgerlite/ledgerlite/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "ledgerlite_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "ledgerlite_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "ledgerlite_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)

	writeMetric(w, "ledgerlite_expenses_created_total %d\n", snap.ExpensesCreated)
	writeMetric(w, "ledgerlite_expenses_updated_total %d\n", snap.ExpensesUpdated)
	writeMetric(w, "ledgerlite_expenses_deleted_total %d\n", snap.ExpensesDeleted)
	writeMetric(w, "ledgerlite_users_deleted_total %d\n", snap.UsersDeleted)

	writeMetric(w, "ledgerlite_budget_alerts_total{class=\"approaching\"} %d\n", snap.ApproachingAlertsEmitted)
	writeMetric(w, "ledgerlite_budget_alerts_total{class=\"exceeded\"} %d\n", snap.ExceededAlertsEmitted)
	writeMetric(w, "ledgerlite_admin_alerts_sent_total %d\n", snap.AdminAlertsSent)
	writeMetric(w, "ledgerlite_pending_notifications_consumed_total %d\n", snap.PendingNotificationsConsumed)

	writeMetric(w, "ledgerlite_change_events_total{status=\"delivered\"} %d\n", snap.ChangeEventsDelivered)
	writeMetric(w, "ledgerlite_change_events_total{status=\"dropped\"} %d\n", snap.ChangeEventsDropped)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
