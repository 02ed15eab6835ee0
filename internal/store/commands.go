package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"clipit_tycoon/internal/domain"
	"clipit_tycoon/internal/economy"
	"clipit_tycoon/internal/metrics"
)

var (
	ErrNoCurrentClip     = errors.New("no current clip")
	ErrClipAlreadyEdited = errors.New("clip already edited")
	ErrNoAccount         = errors.New("account required")
	ErrAccountExists     = errors.New("account already exists")
	ErrUnknownStreamer   = errors.New("unknown streamer")
	ErrUnknownCampaign   = errors.New("unknown campaign")

	// validation
	ErrInvalidAccount  = errors.New("username and password are required")
	ErrInvalidTitle    = errors.New("post title is required")
	ErrInvalidHashtags = errors.New("choose 1 to 5 distinct hashtags from the list")
)

const (
	MaxUsernameLen = 32
	MaxTitleLen    = 150
)

// AddClip makes clip the current clip and records it
func AddClip(clip domain.Clip) Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		st.Clips = append(st.Clips, clip)
		c := clip
		st.CurrentClip = &c
		st.Player.ClipsCreated++
		return st, nil
	}
}

// ActivateCooldown blocks clipping until the given unix millis
func ActivateCooldown(until int64) Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		st.ClipCooldown = until
		return st, nil
	}
}

// ClearCooldown resets an expired cooldown to 0
func ClearCooldown(now time.Time) Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		if st.ClipCooldown == 0 || st.OnCooldown(now) {
			return st, ErrNoChange
		}
		st.ClipCooldown = 0
		return st, nil
	}
}

func SelectStreamer(id string) Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		if _, ok := domain.FindStreamer(id); !ok {
			return st, ErrUnknownStreamer
		}
		st.CurrentStreamerID = id
		return st, nil
	}
}

// EditCurrentClip runs the editing step once: title prefix and high quality
func EditCurrentClip() Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		if st.CurrentClip == nil {
			return st, ErrNoCurrentClip
		}
		if st.CurrentClip.Edited {
			return st, ErrClipAlreadyEdited
		}
		st.CurrentClip.Title = domain.EditedTitlePrefix + st.CurrentClip.Title
		st.CurrentClip.Quality = domain.QualityHigh
		st.CurrentClip.Edited = true
		for i := range st.Clips {
			if st.Clips[i].ID == st.CurrentClip.ID {
				st.Clips[i] = *st.CurrentClip
			}
		}
		return st, nil
	}
}

// CreateAccount sets the identity fields once. passwordHash must already be hashed.
func CreateAccount(username, passwordHash string) Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		if st.Player.HasAccount() {
			return st, ErrAccountExists
		}
		st.Player.TikTokUsername = username
		st.Player.TikTokPassword = passwordHash
		return st, nil
	}
}

// AddPost validates the draft, publishes it through the engine and credits the player.
// The result is written to out.
func AddPost(engine *economy.Engine, draft economy.PostDraft, out *economy.PostResult) Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		if err := ValidatePost(draft.Title, draft.Hashtags); err != nil {
			return st, err
		}
		if !st.Player.HasAccount() {
			return st, ErrNoAccount
		}
		if st.CurrentClip == nil {
			return st, ErrNoCurrentClip
		}
		draft.ClipID = st.CurrentClip.ID

		res := engine.Publish(st.Player, draft)
		st.Player = economy.ApplyPost(st.Player, res)
		st.Posts = append(st.Posts, res.Post)
		st.CurrentClip = nil
		if out != nil {
			*out = res
		}
		return st, nil
	}
}

func ClaimDailyBonus(out *decimal.Decimal) Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		p, amount, err := economy.ClaimDailyBonus(st.Player)
		if err != nil {
			return st, err
		}
		st.Player = p
		if out != nil {
			*out = amount
		}
		return st, nil
	}
}

func JoinCampaign(id string) Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		c, ok := domain.FindCampaign(id)
		if !ok {
			return st, ErrUnknownCampaign
		}
		p, err := economy.JoinCampaign(st.Player, c)
		if err != nil {
			return st, err
		}
		st.Player = p
		return st, nil
	}
}

// RefreshDailyBonus opens a new bonus window when a day has passed
func RefreshDailyBonus(now time.Time) Mutation {
	return func(st domain.GameState) (domain.GameState, error) {
		p, reset := economy.RefreshDailyBonus(st.Player, now)
		if !reset {
			return st, ErrNoChange
		}
		st.Player = p
		return st, nil
	}
}

// ValidatePost checks the title and the hashtag selection
func ValidatePost(title string, hashtags []string) error {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > MaxTitleLen {
		return ErrInvalidTitle
	}
	if len(hashtags) == 0 || len(hashtags) > domain.MaxHashtags {
		return ErrInvalidHashtags
	}
	seen := make(map[string]bool, len(hashtags))
	for _, h := range hashtags {
		if seen[h] || !domain.IsKnownHashtag(h) {
			return ErrInvalidHashtags
		}
		seen[h] = true
	}
	return nil
}

// Store commands. Each applies one mutation and persists.

func (s *Store) AddClip(ctx context.Context, clip domain.Clip) (domain.GameState, error) {
	st, err := s.Apply(ctx, AddClip(clip))
	if err == nil {
		metrics.ClipsTotal.WithLabelValues(string(clip.Quality)).Inc()
	}
	return st, err
}

func (s *Store) ActivateCooldown(ctx context.Context, until time.Time) (domain.GameState, error) {
	return s.Apply(ctx, ActivateCooldown(until.UnixMilli()))
}

func (s *Store) ClearCooldown(ctx context.Context) (domain.GameState, error) {
	return s.Apply(ctx, ClearCooldown(s.clock.Now()))
}

func (s *Store) SelectStreamer(ctx context.Context, id string) (domain.GameState, error) {
	return s.Apply(ctx, SelectStreamer(id))
}

func (s *Store) EditCurrentClip(ctx context.Context) (domain.GameState, error) {
	return s.Apply(ctx, EditCurrentClip())
}

// CreateAccount hashes the password with bcrypt and stores the identity
func (s *Store) CreateAccount(ctx context.Context, username, password string) (domain.GameState, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || len(username) > MaxUsernameLen {
		return s.State(), ErrInvalidAccount
	}
	if s.State().Player.HasAccount() {
		return s.State(), ErrAccountExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return s.State(), err
	}
	return s.Apply(ctx, CreateAccount(username, string(hash)))
}

// AddPost publishes the current clip
func (s *Store) AddPost(ctx context.Context, engine *economy.Engine, title string, hashtags []string) (domain.Post, domain.GameState, error) {
	var res economy.PostResult
	draft := economy.PostDraft{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Hashtags:  hashtags,
		Timestamp: s.clock.Now().UnixMilli(),
	}
	before := s.State().Player.HasPartnership
	st, err := s.Apply(ctx, AddPost(engine, draft, &res))
	if err != nil {
		return domain.Post{}, st, err
	}

	metrics.PostsTotal.WithLabelValues(boolLabel(res.Post.IsViral)).Inc()
	metrics.PostViews.Observe(float64(res.Post.Views))
	if !before && st.Player.HasPartnership {
		metrics.PartnershipsTotal.Inc()
		s.log.Info("partnership unlocked", "followers", st.Player.Followers)
	}
	return res.Post, st, nil
}

func (s *Store) ClaimDailyBonus(ctx context.Context) (decimal.Decimal, domain.GameState, error) {
	amount := decimal.Zero
	st, err := s.Apply(ctx, ClaimDailyBonus(&amount))
	if err == nil {
		metrics.DailyBonusesTotal.Inc()
	}
	return amount, st, err
}

func (s *Store) JoinCampaign(ctx context.Context, id string) (domain.GameState, error) {
	st, err := s.Apply(ctx, JoinCampaign(id))
	if err == nil {
		metrics.CampaignJoinsTotal.WithLabelValues(id).Inc()
	}
	return st, err
}

func (s *Store) RefreshDailyBonus(ctx context.Context) (domain.GameState, error) {
	return s.Apply(ctx, RefreshDailyBonus(s.clock.Now()))
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
