package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// InitialMoney - starting balance of a new player
var InitialMoney = decimal.NewFromInt(10)

// GameState - aggregate root of one player's progression
type GameState struct {
	Player            PlayerState `json:"player"`
	Clips             []Clip      `json:"clips"`
	Posts             []Post      `json:"posts"`
	CurrentClip       *Clip       `json:"currentClip"`
	ClipCooldown      int64       `json:"clipCooldown"` // unix millis, 0 when inactive
	CurrentStreamerID string      `json:"currentStreamerId,omitempty"`
}

// NewGameState returns the state of a brand new player
func NewGameState(now time.Time) GameState {
	return GameState{
		Player: PlayerState{
			Money:         InitialMoney,
			Level:         1,
			TotalEarnings: decimal.Zero,
			LastLogin:     now.UnixMilli(),
		},
		Clips: []Clip{},
		Posts: []Post{},
	}
}

// Clone returns a deep copy safe to mutate
func (s GameState) Clone() GameState {
	out := s
	out.Player.JoinedCampaigns = slices.Clone(s.Player.JoinedCampaigns)
	out.Clips = slices.Clone(s.Clips)
	out.Posts = make([]Post, len(s.Posts))
	for i, p := range s.Posts {
		p.Hashtags = slices.Clone(p.Hashtags)
		out.Posts[i] = p
	}
	if s.CurrentClip != nil {
		c := *s.CurrentClip
		out.CurrentClip = &c
	}
	return out
}

// OnCooldown reports whether clipping is still blocked at now
func (s GameState) OnCooldown(now time.Time) bool {
	return s.ClipCooldown > 0 && now.UnixMilli() < s.ClipCooldown
}

// CooldownRemaining returns how long clipping stays blocked (0 if not)
func (s GameState) CooldownRemaining(now time.Time) time.Duration {
	if !s.OnCooldown(now) {
		return 0
	}
	return time.Duration(s.ClipCooldown-now.UnixMilli()) * time.Millisecond
}

// Equal compares two aggregates by value. Nil and empty slices are equal.
func (s GameState) Equal(o GameState) bool {
	if !s.Player.Equal(o.Player) ||
		s.ClipCooldown != o.ClipCooldown ||
		s.CurrentStreamerID != o.CurrentStreamerID ||
		!slices.Equal(s.Clips, o.Clips) ||
		!slices.EqualFunc(s.Posts, o.Posts, Post.Equal) {
		return false
	}
	if (s.CurrentClip == nil) != (o.CurrentClip == nil) {
		return false
	}
	return s.CurrentClip == nil || *s.CurrentClip == *o.CurrentClip
}
