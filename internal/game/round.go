package game

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipit_tycoon/internal/domain"
	"clipit_tycoon/internal/random"
)

var (
	ErrOnCooldown  = errors.New("clipping is on cooldown")
	ErrNotIdle     = errors.New("round is not idle")
	ErrNotRunning  = errors.New("round is not running")
	ErrRoundClosed = errors.New("round is closed")
)

// Phase of the clip-timing mini-game
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// Track bounds in normalized units
const (
	TrackMin = 0.0
	TrackMax = 100.0
)

// Zone - target interval on the track, inclusive on both ends
type Zone struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (z Zone) Contains(pos float64) bool {
	return pos >= z.Start && pos <= z.End
}

// Settings - balance knobs of the mini-game
type Settings struct {
	TickInterval time.Duration
	Speed        float64 // units per tick
	ZoneStartMin float64
	ZoneStartMax float64
	ZoneWidth    float64
	Cooldown     time.Duration
	ResultDelay  time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		TickInterval: 50 * time.Millisecond,
		Speed:        2,
		ZoneStartMin: 20,
		ZoneStartMax: 60,
		ZoneWidth:    15,
		Cooldown:     30 * time.Second,
		ResultDelay:  1500 * time.Millisecond,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.TickInterval <= 0:
		return errors.New("tick interval must be positive")
	case s.Speed <= 0:
		return errors.New("speed must be positive")
	case s.ZoneWidth <= 0:
		return errors.New("zone width must be positive")
	case s.ZoneStartMin < TrackMin || s.ZoneStartMax < s.ZoneStartMin:
		return errors.New("invalid zone start range")
	case s.ZoneStartMax+s.ZoneWidth > TrackMax:
		return errors.New("zone does not fit on the track")
	case s.Cooldown < 0 || s.ResultDelay < 0:
		return errors.New("durations must not be negative")
	}
	return nil
}

// CooldownGate tells whether clipping is blocked at a given instant
type CooldownGate interface {
	OnCooldown(now time.Time) bool
}

// Hooks receive round effects. All hooks are called without the round lock held.
type Hooks struct {
	// OnClip receives the clip of a successful round
	OnClip func(domain.Clip)
	// OnCooldown receives the cooldown deadline of a failed round
	OnCooldown func(until time.Time)
	// OnSnapshot receives the round state after every tick and transition
	OnSnapshot func(Snapshot)
}

// Env bundles the collaborators of a round
type Env struct {
	Clock     Clock
	Scheduler Scheduler
	Random    random.Source
	Gate      CooldownGate
}

// Snapshot - observable state of a round
type Snapshot struct {
	Phase      Phase   `json:"phase"`
	Position   float64 `json:"position"`
	Direction  int     `json:"direction"`
	Zone       Zone    `json:"zone"`
	StreamerID string  `json:"streamerId"`
}

// Outcome of a commit
type Outcome struct {
	Hit      bool               `json:"hit"`
	Position float64            `json:"position"`
	Zone     Zone               `json:"zone"`
	Quality  domain.ClipQuality `json:"quality,omitempty"`
	// CooldownUntil is set on a miss (unix millis)
	CooldownUntil int64 `json:"cooldownUntil,omitempty"`
}

// Round runs the mini-game for one selected streamer.
// Idle -> Running -> Success|Failure -> Idle
type Round struct {
	mu       sync.Mutex
	settings Settings
	env      Env
	hooks    Hooks
	streamer domain.Streamer

	phase     Phase
	position  float64
	direction int
	zone      Zone

	// gen identifies the current Running session; callbacks of older sessions are stale
	gen         uint64
	tick        Task
	pending     Task
	pendingClip *domain.Clip
	closed      bool
}

func NewRound(streamer domain.Streamer, settings Settings, env Env, hooks Hooks) *Round {
	if env.Clock == nil {
		env.Clock = SystemClock{}
	}
	if env.Scheduler == nil {
		env.Scheduler = TimerScheduler{}
	}
	if env.Random == nil {
		env.Random = random.NewCrypto()
	}
	r := &Round{
		settings: settings,
		env:      env,
		hooks:    hooks,
		streamer: streamer,
	}
	r.enterIdleLocked()
	return r
}

func (r *Round) Streamer() domain.Streamer {
	return r.streamer
}

func (r *Round) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Start begins a Running session
func (r *Round) Start() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoundClosed
	}
	if r.phase != PhaseIdle {
		r.mu.Unlock()
		return ErrNotIdle
	}
	if r.env.Gate != nil && r.env.Gate.OnCooldown(r.env.Clock.Now()) {
		r.mu.Unlock()
		return ErrOnCooldown
	}

	r.phase = PhaseRunning
	r.position = TrackMin
	r.direction = 1
	r.gen++
	gen := r.gen
	r.tick = r.env.Scheduler.Every(r.settings.TickInterval, func() { r.step(gen) })
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emit(snap)
	return nil
}

func (r *Round) step(gen uint64) {
	r.mu.Lock()
	if r.phase != PhaseRunning || r.gen != gen {
		r.mu.Unlock()
		return
	}
	r.position += float64(r.direction) * r.settings.Speed
	if r.position >= TrackMax {
		r.position = TrackMax
		r.direction = -1
	} else if r.position <= TrackMin {
		r.position = TrackMin
		r.direction = 1
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emit(snap)
}

// Commit stops the marker and evaluates the hit. Valid once per Running session.
func (r *Round) Commit() (Outcome, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Outcome{}, ErrRoundClosed
	}
	if r.phase != PhaseRunning {
		r.mu.Unlock()
		return Outcome{}, ErrNotRunning
	}
	r.cancelTickLocked()

	gen := r.gen
	now := r.env.Clock.Now()
	out := Outcome{
		Hit:      r.zone.Contains(r.position),
		Position: r.position,
		Zone:     r.zone,
	}

	var cooldownUntil time.Time
	if out.Hit {
		r.phase = PhaseSuccess
		out.Quality = QualityFor(r.zone, r.position)
		clip := r.newClipLocked(out.Quality, now)
		r.pendingClip = &clip
		r.pending = r.env.Scheduler.After(r.settings.ResultDelay, func() { r.settleSuccess(gen) })
	} else {
		r.phase = PhaseFailure
		cooldownUntil = now.Add(r.settings.Cooldown)
		out.CooldownUntil = cooldownUntil.UnixMilli()
		r.pending = r.env.Scheduler.After(r.settings.ResultDelay, func() { r.settleFailure(gen) })
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if !out.Hit && r.hooks.OnCooldown != nil {
		r.hooks.OnCooldown(cooldownUntil)
	}
	r.emit(snap)
	return out, nil
}

func (r *Round) settleSuccess(gen uint64) {
	r.mu.Lock()
	if r.phase != PhaseSuccess || r.gen != gen || r.pendingClip == nil {
		r.mu.Unlock()
		return
	}
	clip := *r.pendingClip
	r.pendingClip = nil
	r.pending = nil
	r.enterIdleLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if r.hooks.OnClip != nil {
		r.hooks.OnClip(clip)
	}
	r.emit(snap)
}

func (r *Round) settleFailure(gen uint64) {
	r.mu.Lock()
	if r.phase != PhaseFailure || r.gen != gen {
		r.mu.Unlock()
		return
	}
	r.pending = nil
	r.enterIdleLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emit(snap)
}

// Close tears the round down. A Running session is discarded without effects;
// a successful commit whose clip is still pending is delivered right away.
func (r *Round) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.cancelTickLocked()
	if r.pending != nil {
		r.pending.Cancel()
		r.pending = nil
	}
	clip := r.pendingClip
	r.pendingClip = nil
	r.gen++
	r.phase = PhaseIdle
	r.mu.Unlock()

	if clip != nil && r.hooks.OnClip != nil {
		r.hooks.OnClip(*clip)
	}
}

func (r *Round) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Round) enterIdleLocked() {
	r.phase = PhaseIdle
	r.position = TrackMin
	r.direction = 1
	start := random.Between(r.env.Random, r.settings.ZoneStartMin, r.settings.ZoneStartMax)
	r.zone = Zone{Start: start, End: start + r.settings.ZoneWidth}
}

func (r *Round) cancelTickLocked() {
	if r.tick != nil {
		r.tick.Cancel()
		r.tick = nil
	}
}

func (r *Round) newClipLocked(q domain.ClipQuality, now time.Time) domain.Clip {
	return domain.Clip{
		ID:           uuid.NewString(),
		StreamerID:   r.streamer.ID,
		StreamerName: r.streamer.DisplayName,
		Title:        ClipTitle(r.env.Random, r.streamer.DisplayName),
		Duration:     random.IntBetween(r.env.Random, 10, 60),
		Quality:      q,
		Timestamp:    now.UnixMilli(),
	}
}

func (r *Round) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:      r.phase,
		Position:   r.position,
		Direction:  r.direction,
		Zone:       r.zone,
		StreamerID: r.streamer.ID,
	}
}

func (r *Round) emit(s Snapshot) {
	if r.hooks.OnSnapshot != nil {
		r.hooks.OnSnapshot(s)
	}
}

// QualityFor grades a hit by the marker's distance from the zone centre
func QualityFor(z Zone, pos float64) domain.ClipQuality {
	half := (z.End - z.Start) / 2
	if half <= 0 {
		return domain.QualityHigh
	}
	d := math.Abs(pos-(z.Start+half)) / half
	switch {
	case d <= 1.0/3:
		return domain.QualityHigh
	case d <= 2.0/3:
		return domain.QualityMedium
	default:
		return domain.QualityLow
	}
}
