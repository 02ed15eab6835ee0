// Package economy turns posts into views, engagement, earnings and followers
// and owns the unlock, daily bonus and campaign rules.
package economy

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"clipit_tycoon/internal/domain"
	"clipit_tycoon/internal/random"
)

var (
	ErrMarketplaceLocked = errors.New("campaign marketplace is locked")
	ErrCampaignLocked    = errors.New("not enough followers for campaign")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyJoined     = errors.New("campaign already joined")
	ErrBonusClaimed      = errors.New("daily bonus already claimed")
)

// Balance constants
const (
	MinBaseViews    = 100
	MaxBaseViews    = 5000
	ViralChance     = 0.15
	ViralMultMin    = 5.0
	ViralMultMax    = 15.0
	ViralFollowRate = 0.10
	FollowRate      = 0.02

	DailyBonusBase     = 50
	DailyBonusPerLevel = 10
	DailyWindow        = 24 * time.Hour
)

var (
	PartnerRatePerK = decimal.RequireFromString("2.00")
	BaseRatePerK    = decimal.RequireFromString("0.50")
	thousand        = decimal.NewFromInt(1000)
)

// PostDraft - what the player submits
type PostDraft struct {
	ID        string
	ClipID    string
	Title     string
	Hashtags  []string
	Timestamp int64
}

// PostResult - a generated post and the followers it converts
type PostResult struct {
	Post            domain.Post
	FollowersGained int64
}

// Engine draws every random outcome of the economy from one Source
type Engine struct {
	rng random.Source
}

func NewEngine(rng random.Source) *Engine {
	if rng == nil {
		rng = random.NewCrypto()
	}
	return &Engine{rng: rng}
}

// GenerateViews draws base views in [100, 5000]; 15% of posts go viral with a 5x-15x multiplier
func (e *Engine) GenerateViews() (views int64, viral bool) {
	base := float64(random.IntBetween(e.rng, MinBaseViews, MaxBaseViews))
	viral = e.rng.Float64() < ViralChance
	if viral {
		base *= random.Between(e.rng, ViralMultMin, ViralMultMax)
	}
	return int64(math.Floor(base)), viral
}

// Engagement draws likes (5-15%), comments (1-3%) and shares (0.2-0.7%) of views
func (e *Engine) Engagement(views int64) (likes, comments, shares int64) {
	v := float64(views)
	likes = int64(math.Floor(v * random.Between(e.rng, 0.05, 0.15)))
	comments = int64(math.Floor(v * random.Between(e.rng, 0.01, 0.03)))
	shares = int64(math.Floor(v * random.Between(e.rng, 0.002, 0.007)))
	return likes, comments, shares
}

// Earnings pays per 1000 views; partnership is the only thing that moves the rate
func Earnings(views int64, partner bool) decimal.Decimal {
	rate := BaseRatePerK
	if partner {
		rate = PartnerRatePerK
	}
	return decimal.NewFromInt(views).Div(thousand).Mul(rate)
}

// FollowersGained is the only way followers grow
func FollowersGained(views int64, viral bool) int64 {
	rate := FollowRate
	if viral {
		rate = ViralFollowRate
	}
	return int64(math.Floor(float64(views) * rate))
}

// Publish simulates a post going live for the given player
func (e *Engine) Publish(p domain.PlayerState, d PostDraft) PostResult {
	views, viral := e.GenerateViews()
	likes, comments, shares := e.Engagement(views)

	post := domain.Post{
		ID:        d.ID,
		ClipID:    d.ClipID,
		Title:     d.Title,
		Hashtags:  append([]string(nil), d.Hashtags...),
		Views:     views,
		Likes:     likes,
		Comments:  comments,
		Shares:    shares,
		Earnings:  Earnings(views, p.HasPartnership),
		Timestamp: d.Timestamp,
		IsViral:   viral,
	}
	return PostResult{Post: post, FollowersGained: FollowersGained(views, viral)}
}

// ApplyPost credits a post to the player and recomputes unlocks
func ApplyPost(p domain.PlayerState, r PostResult) domain.PlayerState {
	p.PostsCreated++
	p.TotalViews += r.Post.Views
	p.Money = p.Money.Add(r.Post.Earnings)
	p.TotalEarnings = p.TotalEarnings.Add(r.Post.Earnings)
	p.Followers += r.FollowersGained
	return RecomputeUnlocks(p)
}

// RecomputeUnlocks is idempotent and never revokes partnership
func RecomputeUnlocks(p domain.PlayerState) domain.PlayerState {
	p.HasPartnership = p.HasPartnership || p.Followers >= domain.PartnershipThreshold
	return p
}

func DailyBonusAmount(level int) decimal.Decimal {
	return decimal.NewFromInt(int64(DailyBonusBase + level*DailyBonusPerLevel))
}

// RefreshDailyBonus opens a new bonus window once a full day passed since lastLogin
func RefreshDailyBonus(p domain.PlayerState, now time.Time) (domain.PlayerState, bool) {
	elapsed := now.UnixMilli() - p.LastLogin
	if elapsed/DailyWindow.Milliseconds() < 1 {
		return p, false
	}
	p.LastLogin = now.UnixMilli()
	p.DailyBonusClaimed = false
	return p, true
}

// ClaimDailyBonus credits the bonus once per window
func ClaimDailyBonus(p domain.PlayerState) (domain.PlayerState, decimal.Decimal, error) {
	if p.DailyBonusClaimed {
		return p, decimal.Zero, ErrBonusClaimed
	}
	amount := DailyBonusAmount(p.Level)
	p.Money = p.Money.Add(amount)
	p.TotalEarnings = p.TotalEarnings.Add(amount)
	p.DailyBonusClaimed = true
	return p, amount, nil
}

// CanJoinCampaign checks the marketplace gate, funds and follower minimum
func CanJoinCampaign(p domain.PlayerState, c domain.Campaign) error {
	switch {
	case !p.WhopUnlocked():
		return ErrMarketplaceLocked
	case p.HasJoined(c.ID):
		return ErrAlreadyJoined
	case p.Money.LessThan(c.UpfrontCost):
		return ErrInsufficientFunds
	case p.Followers < c.MinFollowers:
		return ErrCampaignLocked
	}
	return nil
}

// JoinCampaign spends the upfront cost and records the campaign
func JoinCampaign(p domain.PlayerState, c domain.Campaign) (domain.PlayerState, error) {
	if err := CanJoinCampaign(p, c); err != nil {
		return p, err
	}
	p.Money = p.Money.Sub(c.UpfrontCost)
	p.JoinedCampaigns = append(append([]string(nil), p.JoinedCampaigns...), c.ID)
	return p, nil
}

// SuggestHashtags returns n distinct tags from the viral catalog
func (e *Engine) SuggestHashtags(n int) []string {
	if n <= 0 {
		n = 3
	}
	return random.Sample(e.rng, domain.ViralHashtags, n)
}
