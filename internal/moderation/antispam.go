package moderation

import (
	"sync"
	"time"
)

// Window is the per-user anti-spam sliding window. Purely in-memory: a
// restart resets everyone's window, which is acceptable drift.
type Window struct {
	mu        sync.Mutex
	times     map[int64][]time.Time
	threshold int
	interval  time.Duration
}

func NewWindow(threshold int, interval time.Duration) *Window {
	return &Window{
		times:     make(map[int64][]time.Time),
		threshold: threshold,
		interval:  interval,
	}
}

// Observe appends now to the user's window, prunes entries older than the
// interval, and reports whether the user is over the threshold.
func (w *Window) Observe(userID int64, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	times := append(w.times[userID], now)
	kept := times[:0]
	for _, t := range times {
		if now.Sub(t) <= w.interval {
			kept = append(kept, t)
		}
	}
	w.times[userID] = kept
	return len(kept) > w.threshold
}
