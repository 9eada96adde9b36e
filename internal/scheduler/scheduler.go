package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pborman/uuid"
	log "github.com/sirupsen/logrus"
)

// Scheduler is the deferred-continuation primitive behind mute expiry and
// reminders. Continuations run on their own goroutines and never block the
// dispatch loop; a panicking continuation is contained and logged.
type Scheduler struct {
	mu         sync.Mutex
	started    bool
	runtimeCtx context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	cancels    map[string]chan struct{}
	logger     *log.Entry
}

func New() *Scheduler {
	return &Scheduler{
		cancels: make(map[string]chan struct{}),
		logger:  log.WithField("context", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.runtimeCtx, s.cancel = context.WithCancel(ctx)
	s.started = true
	return nil
}

// Stop cancels pending continuations and waits for running ones, bounded by
// ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Schedule queues fn to run once after delay and returns the task ID. The
// task is dropped without running if the scheduler stops or the task is
// cancelled first.
func (s *Scheduler) Schedule(delay time.Duration, fn func(ctx context.Context)) string {
	s.mu.Lock()
	runtimeCtx := s.runtimeCtx
	if runtimeCtx == nil {
		runtimeCtx = context.Background()
	}
	id := uuid.New()
	cancelled := make(chan struct{})
	s.cancels[id] = cancelled
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.forget(id)
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithField("task_id", id).Errorf("continuation panic: %v", r)
			}
		}()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-runtimeCtx.Done():
			return
		case <-cancelled:
			return
		case <-timer.C:
		}
		fn(runtimeCtx)
	}()
	return id
}

// Cancel drops a pending task. Reports whether the task was still pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancelled, ok := s.cancels[id]
	if !ok {
		return false
	}
	delete(s.cancels, id)
	close(cancelled)
	return true
}

func (s *Scheduler) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancels, id)
}
