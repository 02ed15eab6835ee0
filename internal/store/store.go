// Package store owns a player's GameState. Every change goes through Apply,
// which runs a pure mutation under the lock and then persists the whole aggregate.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"clipit_tycoon/internal/domain"
	"clipit_tycoon/internal/economy"
	"clipit_tycoon/internal/game"
	"clipit_tycoon/internal/logger"
	"clipit_tycoon/internal/metrics"
	"clipit_tycoon/internal/repository"
)

// ErrNoChange is returned by a mutation that accepted the command but had nothing to do.
// Apply treats it as success and skips persistence.
var ErrNoChange = errors.New("no change")

// Mutation derives the next state from a private copy of the current one.
// A non-nil error (other than ErrNoChange) is a refusal: nothing is applied.
type Mutation func(domain.GameState) (domain.GameState, error)

const saveTimeout = 3 * time.Second

type Store struct {
	mu    sync.Mutex
	key   string
	repo  repository.StateRepository
	clock game.Clock
	log   *slog.Logger
	state domain.GameState
}

// Open loads the player's state. Missing or malformed data falls back to a new game.
// A record that could not be read is left alone and the error is returned.
// The daily bonus window is refreshed as part of opening.
func Open(ctx context.Context, repo repository.StateRepository, playerID string, clock game.Clock) (*Store, error) {
	if clock == nil {
		clock = game.SystemClock{}
	}
	s := &Store{
		key:   repository.StateKey(playerID),
		repo:  repo,
		clock: clock,
		log:   logger.ForPlayer(playerID),
	}

	now := clock.Now()
	state, fresh, err := s.load(ctx, now)
	if err != nil {
		return nil, err
	}
	refreshed, reset := economy.RefreshDailyBonus(state.Player, now)
	state.Player = refreshed
	s.state = state

	if fresh || reset {
		s.mu.Lock()
		s.persistLocked(ctx)
		s.mu.Unlock()
	}
	return s, nil
}

func (s *Store) load(ctx context.Context, now time.Time) (domain.GameState, bool, error) {
	b, err := s.repo.Load(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewGameState(now), true, nil
	}
	if err != nil {
		return domain.GameState{}, false, fmt.Errorf("load state %s: %w", s.key, err)
	}
	state, err := Decode(b)
	if err != nil {
		s.log.Warn("malformed saved state, starting new game", "error", err)
		return domain.NewGameState(now), true, nil
	}
	return state, false, nil
}

// Decode parses a saved aggregate and rejects states that break basic invariants
func Decode(b []byte) (domain.GameState, error) {
	var state domain.GameState
	if err := json.Unmarshal(b, &state); err != nil {
		return domain.GameState{}, err
	}
	if state.Player.Level < 1 {
		return domain.GameState{}, fmt.Errorf("invalid level %d", state.Player.Level)
	}
	if state.Player.Followers < 0 || state.Player.TotalViews < 0 {
		return domain.GameState{}, errors.New("negative counters")
	}
	if state.ClipCooldown < 0 {
		return domain.GameState{}, errors.New("negative cooldown")
	}
	if state.Clips == nil {
		state.Clips = []domain.Clip{}
	}
	if state.Posts == nil {
		state.Posts = []domain.Post{}
	}
	return state, nil
}

func Encode(state domain.GameState) ([]byte, error) {
	return json.Marshal(state)
}

func (s *Store) Key() string {
	return s.key
}

// State returns a copy of the current aggregate. An expired cooldown reads as 0.
func (s *Store) State() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.Clone()
	if st.ClipCooldown > 0 && !st.OnCooldown(s.clock.Now()) {
		st.ClipCooldown = 0
	}
	return st
}

// OnCooldown implements game.CooldownGate
func (s *Store) OnCooldown(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.OnCooldown(now)
}

// Apply runs m and persists the result. Mutations are applied in call order.
func (s *Store) Apply(ctx context.Context, m Mutation) (domain.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := m(s.state.Clone())
	if errors.Is(err, ErrNoChange) {
		return s.state.Clone(), nil
	}
	if err != nil {
		return s.state.Clone(), err
	}
	s.state = next
	s.persistLocked(ctx)
	return s.state.Clone(), nil
}

// Flush writes the current state again
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked(ctx)
}

// persistLocked overwrites the saved aggregate. Failures are logged and counted;
// the in-memory state stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	b, err := Encode(s.state)
	if err != nil {
		metrics.SaveFailuresTotal.Inc()
		s.log.Error("failed to encode state", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := s.repo.Save(ctx, s.key, b); err != nil {
		metrics.SaveFailuresTotal.Inc()
		s.log.Error("failed to save state", "error", err)
	}
}
