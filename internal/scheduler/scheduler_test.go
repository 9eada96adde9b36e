package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleFires(t *testing.T) {
	t.Parallel()

	s := New()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	fired := make(chan struct{})
	s.Schedule(10*time.Millisecond, func(ctx context.Context) {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("continuation did not fire")
	}
}

func TestCancelPreventsRun(t *testing.T) {
	t.Parallel()

	s := New()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	var ran atomic.Bool
	id := s.Schedule(50*time.Millisecond, func(ctx context.Context) {
		ran.Store(true)
	})
	if !s.Cancel(id) {
		t.Fatalf("cancel of pending task must report true")
	}

	time.Sleep(150 * time.Millisecond)
	if ran.Load() {
		t.Fatalf("cancelled continuation still ran")
	}
	if s.Cancel(id) {
		t.Fatalf("second cancel must report false")
	}
}

func TestStopDropsPendingTasks(t *testing.T) {
	t.Parallel()

	s := New()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	var ran atomic.Bool
	s.Schedule(time.Hour, func(ctx context.Context) {
		ran.Store(true)
	})

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if ran.Load() {
		t.Fatalf("pending task ran during stop")
	}
}

func TestContinuationPanicIsContained(t *testing.T) {
	t.Parallel()

	s := New()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	fired := make(chan struct{})
	s.Schedule(time.Millisecond, func(ctx context.Context) {
		defer close(fired)
		panic("boom")
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("panicking continuation never ran")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("stop after panic: %v", err)
	}
}
