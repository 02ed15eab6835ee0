package handlers

import (
	"net/http"
	"strconv"

	"clipit_tycoon/internal/domain"
	"clipit_tycoon/internal/economy"

	"github.com/gin-gonic/gin"
)

func (h *Handler) State(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

func (h *Handler) Streamers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"streamers": domain.Streamers})
}

type campaignView struct {
	domain.Campaign
	Joined   bool   `json:"joined"`
	CanJoin  bool   `json:"canJoin"`
	Blocking string `json:"blocking,omitempty"`
}

// Campaigns lists the marketplace with the caller's eligibility for each offer
func (h *Handler) Campaigns(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	player := sess.Store().State().Player

	list := make([]campaignView, 0, len(domain.Campaigns))
	for _, camp := range domain.Campaigns {
		v := campaignView{Campaign: camp, Joined: player.HasJoined(camp.ID)}
		if err := economy.CanJoinCampaign(player, camp); err != nil {
			v.Blocking = err.Error()
		} else {
			v.CanJoin = true
		}
		list = append(list, v)
	}

	c.JSON(http.StatusOK, gin.H{
		"unlocked":  player.WhopUnlocked(),
		"campaigns": list,
	})
}

// Hashtags returns ?count= random suggestions (3 by default) plus the full list
func (h *Handler) Hashtags(c *gin.Context) {
	count := 3
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > len(domain.ViralHashtags) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid count"})
			return
		}
		count = n
	}
	c.JSON(http.StatusOK, gin.H{
		"suggested": h.Games.Engine().SuggestHashtags(count),
		"all":       domain.ViralHashtags,
	})
}

// Posts returns the post history, newest first
func (h *Handler) Posts(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	posts := sess.View().Posts
	out := make([]domain.Post, 0, len(posts))
	for i := len(posts) - 1; i >= 0; i-- {
		out = append(out, posts[i])
	}
	c.JSON(http.StatusOK, gin.H{"posts": out})
}
