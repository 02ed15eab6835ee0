package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SelectStreamer(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := sess.SelectStreamer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "select_streamer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"minigame": snap})
}

func (h *Handler) Minigame(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap, active := sess.Round()
	if !active {
		c.JSON(http.StatusOK, gin.H{"minigame": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"minigame": snap})
}

func (h *Handler) StartRound(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.StartRound(c.Request.Context()); err != nil {
		respondError(c, "start_round", err)
		return
	}
	snap, _ := sess.Round()
	c.JSON(http.StatusOK, gin.H{"minigame": snap})
}

func (h *Handler) CommitRound(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	out, err := sess.Commit(c.Request.Context())
	if err != nil {
		respondError(c, "commit_round", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": out})
}

func (h *Handler) LeaveRound(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Leave()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
