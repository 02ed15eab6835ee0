package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"clipit_tycoon/internal/domain"
	"clipit_tycoon/internal/game"
	"clipit_tycoon/internal/logger"
	"clipit_tycoon/internal/metrics"
	"clipit_tycoon/internal/store"
)

var ErrNoStreamer = errors.New("select a streamer first")

// Event types pushed to subscribers
const (
	EventTick   = "tick"
	EventPhase  = "phase"
	EventResult = "result"
	EventClip   = "clip"
	EventError  = "error"
)

// Event - a mini-game notification for subscribers
type Event struct {
	Type     string         `json:"type"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Outcome  *game.Outcome  `json:"outcome,omitempty"`
	Clip     *domain.Clip   `json:"clip,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Session - one player's store plus the mini-game round of the selected streamer
type Session struct {
	PlayerID string

	svc   *GameService
	store *store.Store

	mu       sync.Mutex
	round    *game.Round
	lastSeen time.Time

	obsMu     sync.Mutex
	observers map[uint64]func(Event)
	nextObs   uint64
	lastPhase game.Phase
}

func newSession(playerID string, st *store.Store, svc *GameService) *Session {
	return &Session{
		PlayerID:  playerID,
		svc:       svc,
		store:     st,
		observers: make(map[uint64]func(Event)),
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Session) Store() *store.Store {
	return s.store
}

// View returns the client view of the player's state
func (s *Session) View() StateView {
	return NewStateView(s.store.State(), s.svc.clock.Now())
}

// Subscribe registers fn for mini-game events. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Session) subscribers() int {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	return len(s.observers)
}

func (s *Session) publish(e Event) {
	s.obsMu.Lock()
	fns := make([]func(Event), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

func (s *Session) onSnapshot(snap game.Snapshot) {
	s.obsMu.Lock()
	typ := EventPhase
	if snap.Phase == game.PhaseRunning && s.lastPhase == game.PhaseRunning {
		typ = EventTick
	}
	s.lastPhase = snap.Phase
	s.obsMu.Unlock()

	s.publish(Event{Type: typ, Snapshot: &snap})
}

func (s *Session) onClip(clip domain.Clip) {
	if _, err := s.store.AddClip(context.Background(), clip); err != nil {
		logger.ForPlayer(s.PlayerID).Error("failed to add clip", "error", err)
		return
	}
	s.publish(Event{Type: EventClip, Clip: &clip})
}

func (s *Session) onCooldown(until time.Time) {
	if _, err := s.store.ActivateCooldown(context.Background(), until); err != nil {
		logger.ForPlayer(s.PlayerID).Error("failed to activate cooldown", "error", err)
	}
}

// SelectStreamer tears down the current round and opens a new one for the streamer
func (s *Session) SelectStreamer(ctx context.Context, id string) (game.Snapshot, error) {
	streamer, ok := domain.FindStreamer(id)
	if !ok {
		return game.Snapshot{}, store.ErrUnknownStreamer
	}
	if _, err := s.store.SelectStreamer(ctx, id); err != nil {
		return game.Snapshot{}, err
	}

	round := game.NewRound(streamer, s.svc.settings, game.Env{
		Clock:     s.svc.clock,
		Scheduler: s.svc.sched,
		Random:    s.svc.rng,
		Gate:      s.store,
	}, game.Hooks{
		OnClip:     s.onClip,
		OnCooldown: s.onCooldown,
		OnSnapshot: s.onSnapshot,
	})

	s.mu.Lock()
	prev := s.round
	s.round = round
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	snap := round.Snapshot()
	s.onSnapshot(snap)
	return snap, nil
}

func (s *Session) currentRound() (*game.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		return nil, ErrNoStreamer
	}
	return s.round, nil
}

// Round returns the mini-game snapshot, false when no streamer is selected
func (s *Session) Round() (game.Snapshot, bool) {
	r, err := s.currentRound()
	if err != nil {
		return game.Snapshot{}, false
	}
	return r.Snapshot(), true
}

// StartRound starts the marker; refused while on cooldown
func (s *Session) StartRound(ctx context.Context) error {
	r, err := s.currentRound()
	if err != nil {
		return err
	}
	if _, err := s.store.ClearCooldown(ctx); err != nil {
		return err
	}
	return r.Start()
}

// Commit stops the marker and reports the outcome
func (s *Session) Commit(ctx context.Context) (game.Outcome, error) {
	r, err := s.currentRound()
	if err != nil {
		return game.Outcome{}, err
	}
	out, err := r.Commit()
	if err != nil {
		return out, err
	}
	label := "miss"
	if out.Hit {
		label = "hit"
	}
	metrics.RoundsTotal.WithLabelValues(label).Inc()
	s.publish(Event{Type: EventResult, Outcome: &out})
	return out, nil
}

// Leave discards the round, as when the player navigates away
func (s *Session) Leave() {
	s.mu.Lock()
	r := s.round
	s.round = nil
	s.mu.Unlock()
	if r != nil {
		r.Close()
	}
}

func (s *Session) EditClip(ctx context.Context) (domain.GameState, error) {
	return s.store.EditCurrentClip(ctx)
}

func (s *Session) CreateAccount(ctx context.Context, username, password string) (domain.GameState, error) {
	return s.store.CreateAccount(ctx, username, password)
}

func (s *Session) Post(ctx context.Context, title string, hashtags []string) (domain.Post, error) {
	post, _, err := s.store.AddPost(ctx, s.svc.engine, title, hashtags)
	return post, err
}

func (s *Session) ClaimDailyBonus(ctx context.Context) (decimal.Decimal, error) {
	amount, _, err := s.store.ClaimDailyBonus(ctx)
	return amount, err
}

func (s *Session) JoinCampaign(ctx context.Context, id string) (domain.GameState, error) {
	return s.store.JoinCampaign(ctx, id)
}

func (s *Session) close() {
	s.Leave()
	s.store.Flush(context.Background())
}
