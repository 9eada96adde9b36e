package moderation

import (
	"testing"
	"time"
)

func TestWindowBurstTriggers(t *testing.T) {
	t.Parallel()

	window := NewWindow(5, 10*time.Second)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if window.Observe(42, start.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("message %d within threshold flagged as spam", i+1)
		}
	}
	if !window.Observe(42, start.Add(5*time.Second)) {
		t.Fatalf("6th message within the interval must be spam")
	}
}

func TestWindowSpacedMessagesPass(t *testing.T) {
	t.Parallel()

	window := NewWindow(5, 10*time.Second)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// 3s spacing keeps at most 4 messages in any 10s window.
	for i := 0; i < 20; i++ {
		if window.Observe(42, start.Add(time.Duration(i*3)*time.Second)) {
			t.Fatalf("spaced message %d flagged as spam", i+1)
		}
	}
}

func TestWindowPrunesOldEntries(t *testing.T) {
	t.Parallel()

	window := NewWindow(2, 10*time.Second)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	window.Observe(7, start)
	window.Observe(7, start.Add(time.Second))
	if !window.Observe(7, start.Add(2*time.Second)) {
		t.Fatalf("third message in window must be spam at threshold 2")
	}
	// A minute later the window is empty again.
	if window.Observe(7, start.Add(time.Minute)) {
		t.Fatalf("window must forget entries older than the interval")
	}
}

func TestWindowIsolatesUsers(t *testing.T) {
	t.Parallel()

	window := NewWindow(1, 10*time.Second)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	window.Observe(1, now)
	if window.Observe(2, now) {
		t.Fatalf("one user's burst must not mark another user")
	}
}
