package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// PartnershipThreshold - followers needed for the one-way partnership unlock
const PartnershipThreshold int64 = 10000

const (
	GoalReachPartnership = "Reach 10,000 TikTok followers"
	GoalGoViral          = "Become a viral sensation!"
)

// PlayerState - canonical player progression
type PlayerState struct {
	Money     decimal.Decimal `json:"money"`
	Followers int64           `json:"followers"`
	Level     int             `json:"level"`

	// Identity fields, set once by account creation. The password is a bcrypt hash.
	TikTokUsername string `json:"tikTokUsername"`
	TikTokPassword string `json:"tikTokPassword"`

	HasPartnership bool `json:"hasPartnership"`

	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	TotalViews    int64           `json:"totalViews"`
	ClipsCreated  int64           `json:"clipsCreated"`
	PostsCreated  int64           `json:"postsCreated"`

	LastLogin         int64 `json:"lastLogin"` // unix millis
	DailyBonusClaimed bool  `json:"dailyBonusClaimed"`

	JoinedCampaigns []string `json:"joinedCampaigns,omitempty"`
}

// WhopUnlocked - campaign marketplace access, always equal to HasPartnership
func (p PlayerState) WhopUnlocked() bool {
	return p.HasPartnership
}

// CurrentGoal - progression goal shown to the player
func (p PlayerState) CurrentGoal() string {
	if p.HasPartnership {
		return GoalGoViral
	}
	return GoalReachPartnership
}

// HasAccount reports whether the simulated platform account exists
func (p PlayerState) HasAccount() bool {
	return p.TikTokUsername != ""
}

// HasJoined reports whether the campaign was already joined
func (p PlayerState) HasJoined(campaignID string) bool {
	return slices.Contains(p.JoinedCampaigns, campaignID)
}

// GoalProgress returns progress towards the current goal in percent (0-100).
// After partnership the next milestone is 100K followers.
func (p PlayerState) GoalProgress() int {
	target := PartnershipThreshold
	if p.HasPartnership {
		target = 10 * PartnershipThreshold
	}
	progress := p.Followers * 100 / target
	if progress > 100 {
		return 100
	}
	return int(progress)
}

// Equal compares two player states; decimals are compared by value
func (p PlayerState) Equal(o PlayerState) bool {
	return p.Money.Equal(o.Money) &&
		p.Followers == o.Followers &&
		p.Level == o.Level &&
		p.TikTokUsername == o.TikTokUsername &&
		p.TikTokPassword == o.TikTokPassword &&
		p.HasPartnership == o.HasPartnership &&
		p.TotalEarnings.Equal(o.TotalEarnings) &&
		p.TotalViews == o.TotalViews &&
		p.ClipsCreated == o.ClipsCreated &&
		p.PostsCreated == o.PostsCreated &&
		p.LastLogin == o.LastLogin &&
		p.DailyBonusClaimed == o.DailyBonusClaimed &&
		slices.Equal(p.JoinedCampaigns, o.JoinedCampaigns)
}
