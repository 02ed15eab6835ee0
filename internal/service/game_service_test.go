package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"clipit_tycoon/internal/economy"
	"clipit_tycoon/internal/game"
	"clipit_tycoon/internal/random"
	"clipit_tycoon/internal/repository"
)

var t0 = time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC)

type harness struct {
	svc   *GameService
	clock *game.ManualClock
	sched *game.ManualScheduler
	repo  *repository.MemoryStateRepository
}

// every zone is [40, 55]; every post gets 100 views
func newHarness() *harness {
	clock := game.NewManualClock(t0)
	sched := game.NewManualScheduler(clock)
	repo := repository.NewMemoryStateRepository()
	svc := NewGameService(repo, game.DefaultSettings(),
		WithClock(clock),
		WithScheduler(sched),
		WithRandom(&random.Scripted{FallbackFloat: 0.5}),
	)
	return &harness{svc: svc, clock: clock, sched: sched, repo: repo}
}

func (h *harness) session(t *testing.T, playerID string) *Session {
	t.Helper()
	sess, err := h.svc.Session(context.Background(), playerID)
	if err != nil {
		t.Fatalf("Session(%s): %v", playerID, err)
	}
	return sess
}

func ticks(n int) time.Duration {
	return time.Duration(n) * game.DefaultSettings().TickInterval
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) count(typ string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestClipToPostFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	sess := h.session(t, "p1")

	if err := sess.StartRound(ctx); !errors.Is(err, ErrNoStreamer) {
		t.Fatalf("err = %v; want ErrNoStreamer", err)
	}

	log := &eventLog{}
	unsubscribe := sess.Subscribe(log.add)
	defer unsubscribe()

	if _, err := sess.SelectStreamer(ctx, "xqc"); err != nil {
		t.Fatalf("SelectStreamer: %v", err)
	}
	if err := sess.StartRound(ctx); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	h.sched.Advance(ticks(23))

	out, err := sess.Commit(ctx)
	if err != nil || !out.Hit {
		t.Fatalf("Commit = %+v, %v", out, err)
	}
	h.sched.Advance(game.DefaultSettings().ResultDelay)

	view := sess.View()
	if view.CurrentClip == nil || view.Player.ClipsCreated != 1 {
		t.Fatalf("clip not stored: %+v", view)
	}
	if view.CurrentStreamer == nil || view.CurrentStreamer.ID != "xqc" {
		t.Fatalf("current streamer not stored")
	}
	if log.count(EventTick) != 23 || log.count(EventResult) != 1 || log.count(EventClip) != 1 {
		t.Fatalf("unexpected events: tick=%d result=%d clip=%d",
			log.count(EventTick), log.count(EventResult), log.count(EventClip))
	}

	if _, err := sess.EditClip(ctx); err != nil {
		t.Fatalf("EditClip: %v", err)
	}
	if _, err := sess.CreateAccount(ctx, "clipper", "pw"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	post, err := sess.Post(ctx, "insane", []string{"#fyp", "#clips"})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if post.Views != 100 || !post.Earnings.Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("unexpected post %+v", post)
	}

	view = sess.View()
	if !view.Player.Money.Equal(decimal.RequireFromString("10.05")) || view.Player.Followers != 2 {
		t.Fatalf("unexpected player %+v", view.Player)
	}
	if view.CurrentClip != nil || len(view.Posts) != 1 {
		t.Fatalf("post not recorded")
	}
}

func TestMissBlocksNextRound(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	sess := h.session(t, "p1")

	if _, err := sess.SelectStreamer(ctx, "ninja"); err != nil {
		t.Fatalf("SelectStreamer: %v", err)
	}
	if err := sess.StartRound(ctx); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	h.sched.Advance(ticks(5))
	out, err := sess.Commit(ctx)
	if err != nil || out.Hit {
		t.Fatalf("Commit = %+v, %v", out, err)
	}
	if sess.View().CooldownRemainingMs != 30000 {
		t.Fatalf("cooldown remaining = %d", sess.View().CooldownRemainingMs)
	}

	h.sched.Advance(game.DefaultSettings().ResultDelay)
	if err := sess.StartRound(ctx); !errors.Is(err, game.ErrOnCooldown) {
		t.Fatalf("err = %v; want ErrOnCooldown", err)
	}

	h.sched.Advance(30 * time.Second)
	if err := sess.StartRound(ctx); err != nil {
		t.Fatalf("StartRound after cooldown: %v", err)
	}
	if sess.View().ClipCooldown != 0 {
		t.Fatalf("expired cooldown not cleared")
	}
}

func TestSwitchingStreamerDiscardsRunningRound(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	sess := h.session(t, "p1")

	if _, err := sess.SelectStreamer(ctx, "xqc"); err != nil {
		t.Fatalf("SelectStreamer: %v", err)
	}
	if err := sess.StartRound(ctx); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	h.sched.Advance(ticks(23))

	snap, err := sess.SelectStreamer(ctx, "pokimane")
	if err != nil {
		t.Fatalf("SelectStreamer: %v", err)
	}
	if snap.Phase != game.PhaseIdle || snap.StreamerID != "pokimane" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if h.sched.Pending() != 0 {
		t.Fatalf("old tick task still scheduled")
	}
	st := sess.View()
	if st.CurrentClip != nil || st.ClipCooldown != 0 || st.Player.ClipsCreated != 0 {
		t.Fatalf("discarded round had effects: %+v", st)
	}

	sess.Leave()
	if _, ok := sess.Round(); ok {
		t.Fatalf("round survived leave")
	}
	if _, err := sess.Commit(ctx); !errors.Is(err, ErrNoStreamer) {
		t.Fatalf("err = %v; want ErrNoStreamer", err)
	}
}

func TestSessionsSurviveEviction(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	sess := h.session(t, "p1")
	if _, _, err := sess.Store().ClaimDailyBonus(ctx); err != nil {
		t.Fatalf("ClaimDailyBonus: %v", err)
	}
	watched := h.session(t, "p2")
	unsubscribe := watched.Subscribe(func(Event) {})
	defer unsubscribe()

	h.clock.Advance(time.Hour)
	if n := h.svc.EvictIdle(10 * time.Minute); n != 1 {
		t.Fatalf("evicted %d; want 1", n)
	}
	if h.svc.ActiveSessions() != 1 {
		t.Fatalf("active = %d; want 1", h.svc.ActiveSessions())
	}

	reopened := h.session(t, "p1")
	if reopened == sess {
		t.Fatalf("evicted session was reused")
	}
	if !reopened.View().Player.DailyBonusClaimed {
		t.Fatalf("state lost across eviction")
	}
}

func TestRefreshDailyBonuses(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	sess := h.session(t, "p1")
	if _, err := sess.ClaimDailyBonus(ctx); err != nil {
		t.Fatalf("ClaimDailyBonus: %v", err)
	}
	if _, err := sess.ClaimDailyBonus(ctx); !errors.Is(err, economy.ErrBonusClaimed) {
		t.Fatalf("err = %v; want ErrBonusClaimed", err)
	}

	if n := h.svc.RefreshDailyBonuses(ctx); n != 0 {
		t.Fatalf("refreshed %d too early", n)
	}
	h.clock.Advance(25 * time.Hour)
	if n := h.svc.RefreshDailyBonuses(ctx); n != 1 {
		t.Fatalf("refreshed %d; want 1", n)
	}
	if _, err := sess.ClaimDailyBonus(ctx); err != nil {
		t.Fatalf("claim after refresh: %v", err)
	}
}

// gatedRepo fails or holds loads of one key
type gatedRepo struct {
	*repository.MemoryStateRepository
	key string

	failures atomic.Int32
	loads    atomic.Int32
	entered  chan struct{}
	release  chan struct{}
}

func (r *gatedRepo) Load(ctx context.Context, key string) ([]byte, error) {
	if key != r.key {
		return r.MemoryStateRepository.Load(ctx, key)
	}
	r.loads.Add(1)
	if r.failures.Add(-1) >= 0 {
		return nil, errors.New("read tcp: i/o timeout")
	}
	if r.release != nil {
		r.entered <- struct{}{}
		<-r.release
	}
	return r.MemoryStateRepository.Load(ctx, key)
}

func newGatedService(repo *gatedRepo) *GameService {
	clock := game.NewManualClock(t0)
	return NewGameService(repo, game.DefaultSettings(),
		WithClock(clock),
		WithScheduler(game.NewManualScheduler(clock)),
		WithRandom(&random.Scripted{FallbackFloat: 0.5}),
	)
}

func TestFailedLoadIsNotCached(t *testing.T) {
	ctx := context.Background()
	repo := &gatedRepo{MemoryStateRepository: repository.NewMemoryStateRepository(), key: repository.StateKey("p1")}
	svc := newGatedService(repo)

	sess, err := svc.Session(ctx, "p1")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if _, _, err := sess.Store().ClaimDailyBonus(ctx); err != nil {
		t.Fatalf("ClaimDailyBonus: %v", err)
	}
	svc.Close()

	repo.failures.Store(1)
	if _, err := svc.Session(ctx, "p1"); err == nil {
		t.Fatalf("Session succeeded on a failed load")
	}
	if svc.ActiveSessions() != 0 {
		t.Fatalf("failed session was cached")
	}

	sess, err = svc.Session(ctx, "p1")
	if err != nil {
		t.Fatalf("Session retry: %v", err)
	}
	if !sess.View().Player.DailyBonusClaimed {
		t.Fatalf("saved progress lost after failed load")
	}
}

func TestSlowLoadDoesNotBlockOtherPlayers(t *testing.T) {
	ctx := context.Background()
	repo := &gatedRepo{
		MemoryStateRepository: repository.NewMemoryStateRepository(),
		key:                   repository.StateKey("p1"),
		entered:               make(chan struct{}, 1),
		release:               make(chan struct{}),
	}
	svc := newGatedService(repo)

	type result struct {
		sess *Session
		err  error
	}
	first := make(chan result, 1)
	second := make(chan result, 1)
	go func() {
		sess, err := svc.Session(ctx, "p1")
		first <- result{sess, err}
	}()
	<-repo.entered
	go func() {
		sess, err := svc.Session(ctx, "p1")
		second <- result{sess, err}
	}()

	other := make(chan error, 1)
	go func() {
		_, err := svc.Session(ctx, "p2")
		other <- err
	}()
	select {
	case err := <-other:
		if err != nil {
			t.Fatalf("Session(p2): %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("p2 blocked behind p1's load")
	}

	close(repo.release)
	a, b := <-first, <-second
	if a.err != nil || b.err != nil {
		t.Fatalf("Session(p1) errors: %v, %v", a.err, b.err)
	}
	if a.sess != b.sess {
		t.Fatalf("concurrent opens returned different sessions")
	}
	if n := repo.loads.Load(); n != 1 {
		t.Fatalf("p1 loaded %d times; want 1", n)
	}
	if svc.ActiveSessions() != 2 {
		t.Fatalf("active = %d; want 2", svc.ActiveSessions())
	}
}
