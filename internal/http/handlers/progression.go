package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) EditClip(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := sess.EditClip(c.Request.Context()); err != nil {
		respondError(c, "edit_clip", err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

type AccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) CreateAccount(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if _, err := sess.CreateAccount(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, "create_account", err)
		return
	}
	c.JSON(http.StatusCreated, sess.View())
}

type PostRequest struct {
	Title    string   `json:"title"`
	Hashtags []string `json:"hashtags"`
}

func (h *Handler) CreatePost(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	post, err := sess.Post(c.Request.Context(), req.Title, req.Hashtags)
	if err != nil {
		respondError(c, "post", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post, "state": sess.View()})
}

func (h *Handler) ClaimBonus(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	amount, err := sess.ClaimDailyBonus(c.Request.Context())
	if err != nil {
		respondError(c, "daily_bonus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount, "state": sess.View()})
}

func (h *Handler) JoinCampaign(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := sess.JoinCampaign(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "join_campaign", err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}
