package economy

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"clipit_tycoon/internal/domain"
	"clipit_tycoon/internal/random"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newPlayer() domain.PlayerState {
	return domain.NewGameState(time.Unix(0, 0)).Player
}

func TestPublishNormalPost(t *testing.T) {
	// base views 100+900, not viral, engagement draws at mid range
	src := &random.Scripted{Ints: []int{900}, Floats: []float64{0.5}, FallbackFloat: 0.5}
	e := NewEngine(src)

	p := newPlayer()
	res := e.Publish(p, PostDraft{ID: "p1", ClipID: "c1", Title: "t", Hashtags: []string{"#fyp"}})

	if res.Post.Views != 1000 || res.Post.IsViral {
		t.Fatalf("unexpected views %d viral=%v", res.Post.Views, res.Post.IsViral)
	}
	if !res.Post.Earnings.Equal(dec("0.5")) {
		t.Fatalf("earnings = %s; want 0.50", res.Post.Earnings)
	}
	if res.FollowersGained != 20 {
		t.Fatalf("followers = %d; want 20", res.FollowersGained)
	}
	if res.Post.Likes < 50 || res.Post.Likes > 150 {
		t.Fatalf("likes out of range: %d", res.Post.Likes)
	}

	p = ApplyPost(p, res)
	if !p.Money.Equal(dec("10.5")) {
		t.Fatalf("money = %s; want 10.50", p.Money)
	}
	if p.Followers != 20 || p.TotalViews != 1000 || p.PostsCreated != 1 {
		t.Fatalf("unexpected player %+v", p)
	}
	if p.HasPartnership {
		t.Fatalf("partnership unlocked too early")
	}
}

func TestPublishViralPost(t *testing.T) {
	// viral draw 0.1 < 0.15, multiplier 5 + 0.5*10 = 10
	src := &random.Scripted{Ints: []int{900}, Floats: []float64{0.1, 0.5}, FallbackFloat: 0.5}
	e := NewEngine(src)

	res := e.Publish(newPlayer(), PostDraft{ID: "p1"})

	if !res.Post.IsViral || res.Post.Views != 10000 {
		t.Fatalf("expected viral 10000 views, got %d viral=%v", res.Post.Views, res.Post.IsViral)
	}
	if res.FollowersGained != 1000 {
		t.Fatalf("followers = %d; want 1000", res.FollowersGained)
	}
	if !res.Post.Earnings.Equal(dec("5")) {
		t.Fatalf("earnings = %s; want 5", res.Post.Earnings)
	}
}

func TestGenerateViewsRange(t *testing.T) {
	e := NewEngine(random.NewSeeded(3))
	for i := 0; i < 2000; i++ {
		views, viral := e.GenerateViews()
		if !viral && (views < MinBaseViews || views > MaxBaseViews) {
			t.Fatalf("normal views out of range: %d", views)
		}
		if viral && (views < MinBaseViews*ViralMultMin || views >= MaxBaseViews*ViralMultMax) {
			t.Fatalf("viral views out of range: %d", views)
		}
		likes, comments, shares := e.Engagement(views)
		v := float64(views)
		if float64(likes) > v*0.15 || float64(comments) > v*0.03 || float64(shares) > v*0.007 {
			t.Fatalf("engagement out of range: views=%d %d/%d/%d", views, likes, comments, shares)
		}
	}
}

func TestEarnings(t *testing.T) {
	cases := []struct {
		name    string
		views   int64
		partner bool
		want    string
	}{
		{"base rate", 1000, false, "0.5"},
		{"partner rate", 1000, true, "2"},
		{"fractional views", 2500, false, "1.25"},
		{"zero views", 0, true, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Earnings(tc.views, tc.partner)
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("Earnings = %s; want %s", got, tc.want)
			}
		})
	}
}

func TestJoinedCampaignDoesNotChangeEarnings(t *testing.T) {
	crypto, _ := domain.FindCampaign("crypto_app")

	p := newPlayer()
	p.Followers = 20000
	p.Money = dec("150")
	p = RecomputeUnlocks(p)
	p, err := JoinCampaign(p, crypto)
	if err != nil {
		t.Fatalf("JoinCampaign: %v", err)
	}

	// base views 100+900, not viral
	e := NewEngine(&random.Scripted{Ints: []int{900}, Floats: []float64{0.5}, FallbackFloat: 0.5})
	res := e.Publish(p, PostDraft{ID: "p1", ClipID: "c1", Title: "t", Hashtags: []string{"#fyp"}})
	if res.Post.Views != 1000 {
		t.Fatalf("views = %d; want 1000", res.Post.Views)
	}
	if !res.Post.Earnings.Equal(PartnerRatePerK) {
		t.Fatalf("earnings = %s; want partner rate %s", res.Post.Earnings, PartnerRatePerK)
	}
	if !ApplyPost(p, res).Money.Equal(dec("52")) {
		t.Fatalf("campaign paid out on post")
	}
}

func TestFollowersGained(t *testing.T) {
	if got := FollowersGained(1234, false); got != 24 {
		t.Fatalf("normal = %d; want 24", got)
	}
	if got := FollowersGained(1234, true); got != 123 {
		t.Fatalf("viral = %d; want 123", got)
	}
}

func TestPartnershipIsMonotonic(t *testing.T) {
	p := newPlayer()
	p.Followers = 9990
	p = ApplyPost(p, PostResult{Post: domain.Post{Views: 1000, Earnings: dec("0.5")}, FollowersGained: 20})
	if !p.HasPartnership || !p.WhopUnlocked() {
		t.Fatalf("partnership not unlocked at %d followers", p.Followers)
	}
	if p.CurrentGoal() != domain.GoalGoViral {
		t.Fatalf("goal = %q", p.CurrentGoal())
	}

	p.Followers = 0
	again := RecomputeUnlocks(RecomputeUnlocks(p))
	if !again.HasPartnership {
		t.Fatalf("partnership revoked")
	}
}

func TestDailyBonus(t *testing.T) {
	p := newPlayer()
	if got := DailyBonusAmount(p.Level); !got.Equal(dec("60")) {
		t.Fatalf("amount = %s; want 60", got)
	}

	p, amount, err := ClaimDailyBonus(p)
	if err != nil || !amount.Equal(dec("60")) {
		t.Fatalf("claim = %s, %v", amount, err)
	}
	if !p.Money.Equal(dec("70")) || !p.TotalEarnings.Equal(dec("60")) {
		t.Fatalf("money=%s total=%s", p.Money, p.TotalEarnings)
	}

	p, amount, err = ClaimDailyBonus(p)
	if !errors.Is(err, ErrBonusClaimed) || !amount.IsZero() {
		t.Fatalf("second claim = %s, %v", amount, err)
	}
	if !p.Money.Equal(dec("70")) {
		t.Fatalf("refused claim changed money: %s", p.Money)
	}
}

func TestRefreshDailyBonus(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	p := newPlayer()
	p.LastLogin = start.UnixMilli()
	p.DailyBonusClaimed = true

	if _, ok := RefreshDailyBonus(p, start.Add(23*time.Hour+59*time.Minute)); ok {
		t.Fatalf("window reset before a full day")
	}
	next, ok := RefreshDailyBonus(p, start.Add(24*time.Hour))
	if !ok || next.DailyBonusClaimed || next.LastLogin != start.Add(24*time.Hour).UnixMilli() {
		t.Fatalf("expected reset, got %+v", next)
	}
}

func TestJoinCampaign(t *testing.T) {
	mouse, _ := domain.FindCampaign("gaming_mouse")
	crypto, _ := domain.FindCampaign("crypto_app")

	p := newPlayer()
	p.Followers = 12000
	p.Money = dec("120")
	if _, err := JoinCampaign(p, mouse); !errors.Is(err, ErrMarketplaceLocked) {
		t.Fatalf("err = %v; want ErrMarketplaceLocked", err)
	}

	p = RecomputeUnlocks(p)
	joined, err := JoinCampaign(p, mouse)
	if err != nil {
		t.Fatalf("JoinCampaign: %v", err)
	}
	if !joined.Money.Equal(dec("70")) || !joined.HasJoined("gaming_mouse") {
		t.Fatalf("unexpected player %+v", joined)
	}
	if p.HasJoined("gaming_mouse") {
		t.Fatalf("input player was mutated")
	}
	if _, err := JoinCampaign(joined, mouse); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("err = %v; want ErrAlreadyJoined", err)
	}
	rich := joined
	rich.Money = dec("500")
	if _, err := JoinCampaign(rich, crypto); !errors.Is(err, ErrCampaignLocked) {
		t.Fatalf("err = %v; want ErrCampaignLocked", err)
	}

	poor := joined
	poor.Money = dec("10")
	headset, _ := domain.FindCampaign("headset")
	if _, err := JoinCampaign(poor, headset); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v; want ErrInsufficientFunds", err)
	}
}

func TestSuggestHashtags(t *testing.T) {
	e := NewEngine(random.NewSeeded(11))
	tags := e.SuggestHashtags(4)
	if len(tags) != 4 {
		t.Fatalf("len = %d; want 4", len(tags))
	}
	seen := map[string]bool{}
	for _, tag := range tags {
		if !domain.IsKnownHashtag(tag) || seen[tag] {
			t.Fatalf("bad suggestion %q in %v", tag, tags)
		}
		seen[tag] = true
	}
	if got := len(e.SuggestHashtags(0)); got != 3 {
		t.Fatalf("default count = %d; want 3", got)
	}
}
