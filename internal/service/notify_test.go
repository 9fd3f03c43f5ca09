package service

import (
	"context"
	"testing"

	"github.com/ledgerlite/ledgerlite/internal/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		spent  float64
		budget float64
		want   AlertClass
	}{
		{"zero budget never alerts", 10000, 0, AlertNone},
		{"negative budget never alerts", 10000, -5, AlertNone},
		{"well under", 100, 1000, AlertNone},
		{"just under 90%", 899.99, 1000, AlertNone},
		{"exactly 90%", 900, 1000, AlertApproaching},
		{"between", 950, 1000, AlertApproaching},
		{"exactly 100%", 1000, 1000, AlertExceeded},
		{"over", 1010, 1000, AlertExceeded},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.spent, tt.budget); got != tt.want {
				t.Errorf("Classify(%v, %v) = %q, want %q", tt.spent, tt.budget, got, tt.want)
			}
		})
	}
}

func TestEvaluate_EmitsOnlyOnTransition(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	n := env.notifier

	class, note := n.Evaluate("u1", 950, 1000)
	if class != AlertApproaching || note == nil {
		t.Fatalf("first evaluation = (%q, %v), want approaching with note", class, note)
	}

	// Same class again: no repeat emission.
	if _, note := n.Evaluate("u1", 960, 1000); note != nil {
		t.Errorf("repeat evaluation emitted %v", note)
	}

	class, note = n.Evaluate("u1", 1001, 1000)
	if class != AlertExceeded || note == nil {
		t.Fatalf("escalation = (%q, %v), want exceeded with note", class, note)
	}
	if note.Message != "Warning: You've exceeded your budget of $1,000.00." {
		t.Errorf("exceeded message = %q", note.Message)
	}

	// Dropping back clears without emitting.
	class, note = n.Evaluate("u1", 100, 1000)
	if class != AlertNone || note != nil {
		t.Errorf("clear = (%q, %v), want none with no note", class, note)
	}
	if _, ok := n.Standing("u1", 1000); ok {
		t.Error("standing alert survived the clear")
	}
}

func TestTakePending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)

	if _, ok, err := env.notifier.TakePending(ctx, "u1"); err != nil || ok {
		t.Fatalf("TakePending on empty = (%v, %v), want (false, nil)", ok, err)
	}

	want := model.Notification{Message: "hello", Type: model.NotificationInfo}
	if err := env.repo.PutNotification(ctx, "u1", want); err != nil {
		t.Fatalf("PutNotification failed: %v", err)
	}

	note, ok, err := env.notifier.TakePending(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("TakePending = (%v, %v), want a notification", ok, err)
	}
	if note != want {
		t.Errorf("note = %v, want %v", note, want)
	}

	if _, ok, _ := env.notifier.TakePending(ctx, "u1"); ok {
		t.Error("notification was consumable twice")
	}
}

func TestFormatUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{999.9, "$999.90"},
		{1000, "$1,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-42.5, "-$42.50"},
	}

	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
