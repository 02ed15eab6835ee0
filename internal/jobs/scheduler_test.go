package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	evicted   atomic.Int32
	refreshed atomic.Int32
	maxIdle   time.Duration
}

func (f *fakeService) EvictIdle(maxIdle time.Duration) int {
	f.maxIdle = maxIdle
	f.evicted.Add(1)
	return 2
}

func (f *fakeService) RefreshDailyBonuses(context.Context) int {
	f.refreshed.Add(1)
	return 1
}

func TestRunJobsDirectly(t *testing.T) {
	svc := &fakeService{}
	s := NewScheduler(svc, Config{IdleTimeout: 15 * time.Minute})

	s.RunJanitor()
	s.RunBonusRefresh(context.Background())

	if svc.evicted.Load() != 1 || svc.maxIdle != 15*time.Minute {
		t.Fatalf("janitor not run with idle timeout: %d %v", svc.evicted.Load(), svc.maxIdle)
	}
	if svc.refreshed.Load() != 1 {
		t.Fatalf("bonus refresh not run")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&fakeService{}, Config{JanitorSpec: "every now and then", BonusSpec: "@hourly"})
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error for bad spec")
	}
}

func TestScheduledJobsFire(t *testing.T) {
	svc := &fakeService{}
	s := NewScheduler(svc, Config{JanitorSpec: "@every 1s", BonusSpec: "@every 1s", IdleTimeout: time.Minute})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if svc.evicted.Load() > 0 && svc.refreshed.Load() > 0 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("jobs did not fire: evicted=%d refreshed=%d", svc.evicted.Load(), svc.refreshed.Load())
}
