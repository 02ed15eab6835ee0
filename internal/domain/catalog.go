package domain

import "github.com/shopspring/decimal"

// Streamer - a clip source from the static catalog
type Streamer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Followers   int64  `json:"followers"`
	Category    string `json:"category"`
}

// Campaign - sponsor offer from the marketplace.
// PayPerView is the advertised rate shown in the catalog; joining only spends UpfrontCost.
type Campaign struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Brand        string          `json:"brand"`
	PayPerView   decimal.Decimal `json:"payPerView"`
	UpfrontCost  decimal.Decimal `json:"upfrontCost"`
	MinFollowers int64           `json:"minFollowers"`
	Description  string          `json:"description"`
}

var Streamers = []Streamer{
	{ID: "ishowspeed", Name: "ishowspeed", DisplayName: "IShowSpeed", Followers: 15200000, Category: "Variety"},
	{ID: "xqc", Name: "xqc", DisplayName: "xQc", Followers: 11800000, Category: "Variety"},
	{ID: "kaicenat", Name: "kaicenat", DisplayName: "Kai Cenat", Followers: 9600000, Category: "Variety"},
	{ID: "pokimane", Name: "pokimane", DisplayName: "Pokimane", Followers: 8900000, Category: "Variety"},
	{ID: "ninja", Name: "ninja", DisplayName: "Ninja", Followers: 18700000, Category: "Gaming"},
}

var ViralHashtags = []string{
	"#viral", "#fyp", "#foryou", "#trending", "#funny", "#gaming",
	"#stream", "#twitch", "#clips", "#reaction", "#memes", "#speedrun",
	"#clutch", "#poggers", "#epic", "#moments", "#highlights", "#live",
}

var Campaigns = []Campaign{
	{
		ID: "gaming_mouse", Title: "Gaming Mouse Promo", Brand: "TechGear Pro",
		PayPerView: decimal.RequireFromString("3.0"), UpfrontCost: decimal.NewFromInt(50), MinFollowers: 5000,
		Description: "Promote our new gaming mouse in your clips",
	},
	{
		ID: "energy_drink", Title: "Energy Drink Campaign", Brand: "PowerUp Energy",
		PayPerView: decimal.RequireFromString("2.5"), UpfrontCost: decimal.NewFromInt(25), MinFollowers: 3000,
		Description: "Feature our energy drink in gaming content",
	},
	{
		ID: "crypto_app", Title: "Crypto Trading App", Brand: "CoinTrader",
		PayPerView: decimal.RequireFromString("5.0"), UpfrontCost: decimal.NewFromInt(100), MinFollowers: 15000,
		Description: "Promote our crypto trading platform",
	},
	{
		ID: "headset", Title: "Pro Gaming Headset", Brand: "AudioMax",
		PayPerView: decimal.RequireFromString("2.0"), UpfrontCost: decimal.NewFromInt(30), MinFollowers: 1000,
		Description: "Showcase our premium gaming headset",
	},
	{
		ID: "clothing", Title: "Streetwear Collection", Brand: "UrbanFlex",
		PayPerView: decimal.RequireFromString("1.5"), UpfrontCost: decimal.NewFromInt(15), MinFollowers: 2000,
		Description: "Wear our latest streetwear in your content",
	},
}

// FindStreamer looks a streamer up by id
func FindStreamer(id string) (Streamer, bool) {
	for _, s := range Streamers {
		if s.ID == id {
			return s, true
		}
	}
	return Streamer{}, false
}

// FindCampaign looks a campaign up by id
func FindCampaign(id string) (Campaign, bool) {
	for _, c := range Campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return Campaign{}, false
}

// IsKnownHashtag reports whether tag belongs to the viral catalog
func IsKnownHashtag(tag string) bool {
	for _, h := range ViralHashtags {
		if h == tag {
			return true
		}
	}
	return false
}
