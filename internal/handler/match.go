package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/equalplay-service/internal/clock"
	"github.com/maxviazov/equalplay-service/internal/roster"
	"github.com/maxviazov/equalplay-service/internal/service"
	"github.com/maxviazov/equalplay-service/pkg/response"
)

// MatchHandler serves the session snapshot, the clock, resets and the scoreboard.
type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/match")
	{
		g.GET("", h.snapshot)
		g.GET("/clock", h.clock)
		g.POST("/clock/start", h.start)
		g.POST("/clock/pause", h.pause)
		g.POST("/clock/reconcile", h.reconcile)
		g.POST("/reset-minutes", h.resetMinutes)
		g.POST("/reset-stats", h.resetStats)
		g.PUT("/teams", h.renameTeams)
		g.POST("/score", h.adjustScore)
	}
}

type reconcileResponse struct {
	clock.View
	AddedSeconds int64 `json:"added_seconds"`
}

type teamsRequest struct {
	Home string `json:"home" binding:"max=40"`
	Away string `json:"away" binding:"max=40"`
}

type scoreRequest struct {
	Side  string `json:"side" binding:"required,oneof=home away"`
	Delta int    `json:"delta" binding:"required"`
}

func (h *MatchHandler) snapshot(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.Snapshot(c.Request.Context()))
}

func (h *MatchHandler) clock(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.Clock(c.Request.Context()))
}

func (h *MatchHandler) start(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	v, err := h.svc.StartClock(ctx)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, v)
}

func (h *MatchHandler) pause(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	v, err := h.svc.PauseClock(ctx)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, v)
}

func (h *MatchHandler) reconcile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	v, added, err := h.svc.Reconcile(ctx)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, reconcileResponse{View: v, AddedSeconds: added})
}

func (h *MatchHandler) resetMinutes(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.svc.ResetMinutes(ctx); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, h.svc.Clock(c.Request.Context()))
}

func (h *MatchHandler) resetStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.svc.ResetStats(ctx); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MatchHandler) renameTeams(c *gin.Context) {
	var req teamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	sb, err := h.svc.RenameTeams(ctx, req.Home, req.Away)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, sb)
}

func (h *MatchHandler) adjustScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{
			{Field: "side", Message: "must be home or away"},
			{Field: "delta", Message: "must be a non-zero integer"},
		}))
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	sb, err := h.svc.AdjustScore(ctx, roster.Side(req.Side), req.Delta)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, sb)
}
