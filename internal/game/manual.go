package game

import (
	"sync"
	"sync/atomic"
	"time"
)

// ManualClock is a Clock that only moves when told to
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ManualScheduler fires tasks synchronously from Advance, in due order.
// Used for replays and tests together with a ManualClock.
type ManualScheduler struct {
	mu    sync.Mutex
	clock *ManualClock
	tasks []*manualTask
}

type manualTask struct {
	due       time.Time
	every     time.Duration
	fn        func()
	cancelled atomic.Bool
}

func (t *manualTask) Cancel() {
	t.cancelled.Store(true)
}

func NewManualScheduler(clock *ManualClock) *ManualScheduler {
	return &ManualScheduler{clock: clock}
}

func (s *ManualScheduler) Every(d time.Duration, fn func()) Task {
	return s.add(d, d, fn)
}

func (s *ManualScheduler) After(d time.Duration, fn func()) Task {
	return s.add(d, 0, fn)
}

func (s *ManualScheduler) add(d, every time.Duration, fn func()) Task {
	t := &manualTask{due: s.clock.Now().Add(d), every: every, fn: fn}
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return t
}

// Advance moves the clock forward by d and runs every task that becomes due
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)
	for {
		s.mu.Lock()
		var next *manualTask
		for _, t := range s.tasks {
			if t.cancelled.Load() || t.due.After(target) {
				continue
			}
			if next == nil || t.due.Before(next.due) {
				next = t
			}
		}
		if next == nil {
			s.prune()
			s.mu.Unlock()
			break
		}
		s.clock.Set(next.due)
		if next.every > 0 {
			next.due = next.due.Add(next.every)
		} else {
			next.cancelled.Store(true)
		}
		s.mu.Unlock()

		next.fn()
	}
	s.clock.Set(target)
}

// Pending returns the number of live tasks
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled.Load() {
			n++
		}
	}
	return n
}

func (s *ManualScheduler) prune() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled.Load() {
			live = append(live, t)
		}
	}
	s.tasks = live
}
