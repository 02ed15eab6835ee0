package game

import (
	"sync"
	"time"
)

// Clock is the time source of the game
type Clock interface {
	Now() time.Time
}

// Task is a scheduled callback. Cancel is idempotent and never blocks.
type Task interface {
	Cancel()
}

// Scheduler runs deferred and recurring callbacks
type Scheduler interface {
	// Every runs fn every d until the task is cancelled
	Every(d time.Duration, fn func()) Task
	// After runs fn once after d unless cancelled first
	After(d time.Duration, fn func()) Task
}

// SystemClock returns wall clock time
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TimerScheduler runs callbacks on runtime timers
type TimerScheduler struct{}

func (TimerScheduler) Every(d time.Duration, fn func()) Task {
	t := &tickerTask{stop: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

func (TimerScheduler) After(d time.Duration, fn func()) Task {
	return &timerTask{timer: time.AfterFunc(d, fn)}
}

type tickerTask struct {
	once sync.Once
	stop chan struct{}
}

func (t *tickerTask) Cancel() {
	t.once.Do(func() { close(t.stop) })
}

type timerTask struct {
	timer *time.Timer
}

func (t *timerTask) Cancel() {
	t.timer.Stop()
}
