package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipit_rounds_total",
			Help: "Committed mini-game rounds by outcome",
		},
		[]string{"outcome"},
	)
	ClipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipit_clips_total",
			Help: "Clips created by quality",
		},
		[]string{"quality"},
	)
	PostsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipit_posts_total",
			Help: "Posts published",
		},
		[]string{"viral"},
	)
	PostViews = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipit_post_views",
			Help:    "Views generated per post",
			Buckets: prometheus.ExponentialBuckets(100, 2, 11),
		},
	)
	PartnershipsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clipit_partnerships_total",
			Help: "Players that reached partnership",
		},
	)
	DailyBonusesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clipit_daily_bonuses_total",
			Help: "Daily bonuses claimed",
		},
	)
	CampaignJoinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipit_campaign_joins_total",
			Help: "Campaigns joined",
		},
		[]string{"campaign"},
	)
	RefusalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipit_refusals_total",
			Help: "Refused player actions",
		},
		[]string{"action"},
	)
	SaveFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clipit_state_save_failures_total",
			Help: "Failed state writes",
		},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipit_active_sessions",
			Help: "Open player sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(RoundsTotal)
	prometheus.MustRegister(ClipsTotal)
	prometheus.MustRegister(PostsTotal)
	prometheus.MustRegister(PostViews)
	prometheus.MustRegister(PartnershipsTotal)
	prometheus.MustRegister(DailyBonusesTotal)
	prometheus.MustRegister(CampaignJoinsTotal)
	prometheus.MustRegister(RefusalsTotal)
	prometheus.MustRegister(SaveFailuresTotal)
	prometheus.MustRegister(ActiveSessions)
}
