//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	User userResponse `json:"user"`
	View string       `json:"view"`
}

type expenseResponse struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

type notificationResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type summaryResponse struct {
	MonthTotal  float64               `json:"monthTotal"`
	Budget      float64               `json:"budget"`
	PercentUsed float64               `json:"percentUsed"`
	Alert       *notificationResponse `json:"alert"`
}

type overBudgetResponse struct {
	UserID     string  `json:"userId"`
	Email      string  `json:"email"`
	TotalSpent float64 `json:"totalSpent"`
	Budget     float64 `json:"budget"`
}

// TestE2ESmoke walks one user and one admin through the whole flow
// against a live server. The session is a store-backed singleton, so
// the two accounts take turns rather than running concurrently.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("LEDGERLITE_BASE_URL", "http://localhost:8080")
	waitForServer(t, baseURL)

	stamp := time.Now().UnixNano()
	userEmail := fmt.Sprintf("e2e-user-%d@example.com", stamp)
	adminEmail := fmt.Sprintf("e2e-admin-%d@example.com", stamp)
	today := time.Now().Format("2006-01-02")

	// User: register, budget, expenses, summary, export.
	user := register(t, baseURL, userEmail, "user-pass", "user")
	if user.View != "dashboard" {
		t.Fatalf("expected dashboard view for user, got %q", user.View)
	}

	setBudget(t, baseURL, 1000)

	for _, amount := range []float64{200, 300, 450} {
		createExpense(t, baseURL, amount, today)
	}

	summary := getSummary(t, baseURL)
	if summary.MonthTotal != 950 {
		t.Fatalf("expected month total 950, got %v", summary.MonthTotal)
	}
	if summary.Alert == nil || !strings.Contains(summary.Alert.Message, "approaching") {
		t.Fatalf("expected approaching alert at 95%% spend, got %+v", summary.Alert)
	}

	createExpense(t, baseURL, 60, today)

	summary = getSummary(t, baseURL)
	if summary.Alert == nil || !strings.Contains(summary.Alert.Message, "exceeded") {
		t.Fatalf("expected exceeded alert at 101%% spend, got %+v", summary.Alert)
	}

	assertCSVExport(t, baseURL)

	logout(t, baseURL)

	// Admin: register, inspect aggregates, send an alert.
	admin := register(t, baseURL, adminEmail, "admin-pass", "admin")
	if admin.View != "admin" {
		t.Fatalf("expected admin view, got %q", admin.View)
	}

	assertOverBudget(t, baseURL, user.User.ID)
	sendAlert(t, baseURL, user.User.ID)

	logout(t, baseURL)

	// User consumes the pending alert exactly once.
	login(t, baseURL, userEmail, "user-pass", "user")

	note, status := pendingNotification(t, baseURL)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from first pending read, got %d", status)
	}
	if !strings.Contains(note.Message, "administrator has noted") {
		t.Fatalf("unexpected alert message %q", note.Message)
	}

	if _, status := pendingNotification(t, baseURL); status != http.StatusNoContent {
		t.Fatalf("expected 204 from second pending read, got %d", status)
	}

	logout(t, baseURL)

	// Admin cleans up the user; their records cascade.
	login(t, baseURL, adminEmail, "admin-pass", "admin")
	deleteUser(t, baseURL, user.User.ID)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func waitForServer(t *testing.T, baseURL string) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(250 * time.Millisecond)
	}

	t.Fatalf("server at %s did not become healthy in time", baseURL)
}

func register(t *testing.T, baseURL, email, password, role string) authResponse {
	t.Helper()

	payload := map[string]any{"email": email, "password": password, "role": role}

	var resp authResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", status)
	}
	if resp.User.ID == "" {
		t.Fatalf("register response missing user id")
	}
	return resp
}

func login(t *testing.T, baseURL, email, password, role string) {
	t.Helper()

	payload := map[string]any{"email": email, "password": password, "role": role}
	if status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/login", payload, nil); status != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d", status)
	}
}

func logout(t *testing.T, baseURL string) {
	t.Helper()

	if status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/logout", nil, nil); status != http.StatusNoContent {
		t.Fatalf("expected 204 from logout, got %d", status)
	}
}

func setBudget(t *testing.T, baseURL string, amount float64) {
	t.Helper()

	payload := map[string]any{"amount": amount}
	if status := doJSON(t, http.MethodPut, baseURL+"/api/v1/budget", payload, nil); status != http.StatusOK {
		t.Fatalf("expected 200 from budget set, got %d", status)
	}
}

func createExpense(t *testing.T, baseURL string, amount float64, date string) expenseResponse {
	t.Helper()

	payload := map[string]any{
		"description": fmt.Sprintf("e2e expense %v", amount),
		"amount":      amount,
		"category":    "Food",
		"date":        date,
	}

	var resp expenseResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/expenses", payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from expense create, got %d", status)
	}
	if resp.ID == "" {
		t.Fatalf("expense create response missing id")
	}
	return resp
}

func getSummary(t *testing.T, baseURL string) summaryResponse {
	t.Helper()

	var resp summaryResponse
	status := doJSON(t, http.MethodGet, baseURL+"/api/v1/summary", nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from summary, got %d", status)
	}
	return resp
}

func assertCSVExport(t *testing.T, baseURL string) {
	t.Helper()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/expenses/export")
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from export, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Fatalf("expected text/csv export, got %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export body: %v", err)
	}
	if !strings.HasPrefix(string(body), "ID,Description,Amount,Category,Date") {
		t.Fatalf("unexpected CSV header: %q", strings.SplitN(string(body), "\n", 2)[0])
	}
}

func assertOverBudget(t *testing.T, baseURL, userID string) {
	t.Helper()

	var entries []overBudgetResponse
	status := doJSON(t, http.MethodGet, baseURL+"/api/v1/admin/over-budget", nil, &entries)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from over-budget view, got %d", status)
	}

	for _, entry := range entries {
		if entry.UserID == userID && entry.TotalSpent > entry.Budget {
			return
		}
	}
	t.Fatalf("user %s missing from the over-budget view", userID)
}

func sendAlert(t *testing.T, baseURL, userID string) {
	t.Helper()

	url := fmt.Sprintf("%s/api/v1/admin/users/%s/alert", baseURL, userID)
	if status := doJSON(t, http.MethodPost, url, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 from send alert, got %d", status)
	}
}

func pendingNotification(t *testing.T, baseURL string) (notificationResponse, int) {
	t.Helper()

	var note notificationResponse
	status := doJSON(t, http.MethodGet, baseURL+"/api/v1/notifications/pending", nil, &note)
	return note, status
}

func deleteUser(t *testing.T, baseURL, userID string) {
	t.Helper()

	url := fmt.Sprintf("%s/api/v1/admin/users/%s", baseURL, userID)
	if status := doJSON(t, http.MethodDelete, url, nil, nil); status != http.StatusNoContent {
		t.Fatalf("expected 204 from user delete, got %d", status)
	}
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}
