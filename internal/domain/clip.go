package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// ClipQuality - quality tier of a clip
type ClipQuality string

const (
	QualityLow    ClipQuality = "low"
	QualityMedium ClipQuality = "medium"
	QualityHigh   ClipQuality = "high"
)

// EditedTitlePrefix is prepended to a clip title by the editing step
const EditedTitlePrefix = "Edited: "

// MaxHashtags - maximum hashtags per post
const MaxHashtags = 5

// Clip - artifact of a successful mini-game round
type Clip struct {
	ID           string      `json:"id"`
	StreamerID   string      `json:"streamerId"`
	StreamerName string      `json:"streamerName"`
	Title        string      `json:"title"`
	Duration     int         `json:"duration"` // seconds
	Quality      ClipQuality `json:"quality"`
	Timestamp    int64       `json:"timestamp"` // unix millis
	Edited       bool        `json:"edited,omitempty"`
}

// Post - a clip submitted to the simulated platform. Posts are never mutated.
type Post struct {
	ID        string          `json:"id"`
	ClipID    string          `json:"clipId"`
	Title     string          `json:"title"`
	Hashtags  []string        `json:"hashtags"`
	Views     int64           `json:"views"`
	Likes     int64           `json:"likes"`
	Comments  int64           `json:"comments"`
	Shares    int64           `json:"shares"`
	Earnings  decimal.Decimal `json:"earnings"`
	Timestamp int64           `json:"timestamp"` // unix millis
	IsViral   bool            `json:"isViral"`
}

func (p Post) Equal(o Post) bool {
	return p.ID == o.ID &&
		p.ClipID == o.ClipID &&
		p.Title == o.Title &&
		slices.Equal(p.Hashtags, o.Hashtags) &&
		p.Views == o.Views &&
		p.Likes == o.Likes &&
		p.Comments == o.Comments &&
		p.Shares == o.Shares &&
		p.Earnings.Equal(o.Earnings) &&
		p.Timestamp == o.Timestamp &&
		p.IsViral == o.IsViral
}
