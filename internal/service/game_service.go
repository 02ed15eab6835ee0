package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"clipit_tycoon/internal/economy"
	"clipit_tycoon/internal/game"
	"clipit_tycoon/internal/logger"
	"clipit_tycoon/internal/metrics"
	"clipit_tycoon/internal/random"
	"clipit_tycoon/internal/repository"
	"clipit_tycoon/internal/store"
)

// GameService keeps one session per active player
type GameService struct {
	mu       sync.Mutex
	sessions map[string]*Session

	// concurrent opens of one player share a single load
	opening singleflight.Group

	repo     repository.StateRepository
	settings game.Settings
	clock    game.Clock
	sched    game.Scheduler
	rng      random.Source
	engine   *economy.Engine
}

// Option customizes a GameService
type Option func(*GameService)

func WithClock(c game.Clock) Option {
	return func(s *GameService) { s.clock = c }
}

func WithScheduler(sc game.Scheduler) Option {
	return func(s *GameService) { s.sched = sc }
}

func WithRandom(src random.Source) Option {
	return func(s *GameService) { s.rng = src }
}

// NewGameService creates a new game service
func NewGameService(repo repository.StateRepository, settings game.Settings, opts ...Option) *GameService {
	s := &GameService{
		sessions: make(map[string]*Session),
		repo:     repo,
		settings: settings,
		clock:    game.SystemClock{},
		sched:    game.TimerScheduler{},
		rng:      random.NewCrypto(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = economy.NewEngine(s.rng)
	return s
}

func (s *GameService) Engine() *economy.Engine {
	return s.engine
}

const openTimeout = 5 * time.Second

// Session returns the player's session, opening it from storage on first use.
// A failed load is returned and nothing is cached, so the next call retries.
func (s *GameService) Session(ctx context.Context, playerID string) (*Session, error) {
	if sess := s.lookup(playerID); sess != nil {
		return sess, nil
	}

	v, err, _ := s.opening.Do(playerID, func() (any, error) {
		if sess := s.lookup(playerID); sess != nil {
			return sess, nil
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), openTimeout)
		defer cancel()
		st, err := store.Open(ctx, s.repo, playerID, s.clock)
		if err != nil {
			logger.ForPlayer(playerID).Warn("session open failed", "error", err)
			return nil, err
		}

		sess := newSession(playerID, st, s)
		sess.touch(s.clock.Now())
		s.mu.Lock()
		s.sessions[playerID] = sess
		s.mu.Unlock()
		metrics.ActiveSessions.Inc()
		logger.ForPlayer(playerID).Debug("session opened")
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (s *GameService) lookup(playerID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[playerID]
	if !ok {
		return nil
	}
	sess.touch(s.clock.Now())
	return sess
}

// ActiveSessions returns the number of open sessions
func (s *GameService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle closes sessions untouched for longer than maxIdle and without live subscribers
func (s *GameService) EvictIdle(maxIdle time.Duration) int {
	now := s.clock.Now()

	s.mu.Lock()
	var idle []*Session
	for id, sess := range s.sessions {
		if sess.idleSince(now) < maxIdle || sess.subscribers() > 0 {
			continue
		}
		idle = append(idle, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range idle {
		sess.close()
		metrics.ActiveSessions.Dec()
		logger.ForPlayer(sess.PlayerID).Debug("session evicted")
	}
	return len(idle)
}

// RefreshDailyBonuses opens new bonus windows for open sessions
func (s *GameService) RefreshDailyBonuses(ctx context.Context) int {
	s.mu.Lock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.Unlock()

	n := 0
	for _, sess := range list {
		before := sess.store.State().Player.LastLogin
		st, err := sess.store.RefreshDailyBonus(ctx)
		if err == nil && st.Player.LastLogin != before {
			n++
		}
	}
	return n
}

// Close tears down every session
func (s *GameService) Close() {
	s.mu.Lock()
	list := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		list = append(list, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range list {
		sess.close()
		metrics.ActiveSessions.Dec()
	}
}
