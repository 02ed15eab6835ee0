package service

import (
	"time"

	"github.com/shopspring/decimal"

	"clipit_tycoon/internal/domain"
	"clipit_tycoon/internal/economy"
)

// PlayerView - player fields sent to clients. The password hash never leaves the server.
type PlayerView struct {
	Money             decimal.Decimal `json:"money"`
	Followers         int64           `json:"followers"`
	Level             int             `json:"level"`
	TikTokUsername    string          `json:"tikTokUsername,omitempty"`
	HasAccount        bool            `json:"hasAccount"`
	HasPartnership    bool            `json:"hasPartnership"`
	WhopUnlocked      bool            `json:"whopUnlocked"`
	CurrentGoal       string          `json:"currentGoal"`
	GoalProgress      int             `json:"goalProgress"`
	TotalEarnings     decimal.Decimal `json:"totalEarnings"`
	TotalViews        int64           `json:"totalViews"`
	ClipsCreated      int64           `json:"clipsCreated"`
	PostsCreated      int64           `json:"postsCreated"`
	LastLogin         int64           `json:"lastLogin"`
	DailyBonusClaimed bool            `json:"dailyBonusClaimed"`
	DailyBonusAmount  decimal.Decimal `json:"dailyBonusAmount"`
	JoinedCampaigns   []string        `json:"joinedCampaigns"`
}

type StateView struct {
	Player              PlayerView       `json:"player"`
	Clips               []domain.Clip    `json:"clips"`
	Posts               []domain.Post    `json:"posts"`
	CurrentClip         *domain.Clip     `json:"currentClip"`
	ClipCooldown        int64            `json:"clipCooldown"`
	CooldownRemainingMs int64            `json:"cooldownRemainingMs"`
	CurrentStreamer     *domain.Streamer `json:"currentStreamer"`
}

func NewStateView(st domain.GameState, now time.Time) StateView {
	p := st.Player
	joined := p.JoinedCampaigns
	if joined == nil {
		joined = []string{}
	}
	v := StateView{
		Player: PlayerView{
			Money:             p.Money,
			Followers:         p.Followers,
			Level:             p.Level,
			TikTokUsername:    p.TikTokUsername,
			HasAccount:        p.HasAccount(),
			HasPartnership:    p.HasPartnership,
			WhopUnlocked:      p.WhopUnlocked(),
			CurrentGoal:       p.CurrentGoal(),
			GoalProgress:      p.GoalProgress(),
			TotalEarnings:     p.TotalEarnings,
			TotalViews:        p.TotalViews,
			ClipsCreated:      p.ClipsCreated,
			PostsCreated:      p.PostsCreated,
			LastLogin:         p.LastLogin,
			DailyBonusClaimed: p.DailyBonusClaimed,
			DailyBonusAmount:  economy.DailyBonusAmount(p.Level),
			JoinedCampaigns:   joined,
		},
		Clips:               st.Clips,
		Posts:               st.Posts,
		CurrentClip:         st.CurrentClip,
		ClipCooldown:        st.ClipCooldown,
		CooldownRemainingMs: st.CooldownRemaining(now).Milliseconds(),
	}
	if s, ok := domain.FindStreamer(st.CurrentStreamerID); ok {
		v.CurrentStreamer = &s
	}
	return v
}
