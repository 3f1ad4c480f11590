package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/roster"
	"github.com/maxviazov/equalplay-service/internal/service"
	"github.com/maxviazov/equalplay-service/pkg/response"
	"github.com/rs/zerolog/log"
)

const serviceTimeout = 5 * time.Second

// parseBoolQuery is a helper to flexibly parse boolean-like query parameters.
func parseBoolQuery(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1"
}

// requestContext bounds a service call; mutations may wait on the state store.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), serviceTimeout)
}

type PlayerHandler struct {
	svc service.RosterService
}

func NewPlayerHandler(svc service.RosterService) *PlayerHandler { return &PlayerHandler{svc: svc} }

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.GET("", h.list)
		g.GET("/lineup", h.lineup)
		g.POST("", h.create)
		g.POST("/bulk", h.bulk)
		g.POST("/batch", h.batch)
		g.POST("/bench-all", h.benchAll)
		g.DELETE("/:id", h.remove)
		g.POST("/:id/toggle", h.toggle)
		g.POST("/:id/stats/:stat_id", h.updateStat)
		g.POST("/:id/positions/:position", h.togglePosition)
	}
}

type createPlayerRequest struct {
	Name      string   `json:"name" binding:"max=64"`
	Number    string   `json:"number" binding:"max=8"`
	Positions []string `json:"positions" binding:"max=4"`
}

func (r createPlayerRequest) toNewPlayer() roster.NewPlayer {
	np := roster.NewPlayer{Name: r.Name, Number: r.Number}
	for _, p := range r.Positions {
		np.Positions = append(np.Positions, model.Position(p))
	}
	return np
}

type bulkRequest struct {
	Text string `json:"text" binding:"required"`
}

type batchRequest struct {
	Players []createPlayerRequest `json:"players" binding:"required,dive"`
}

type statRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *PlayerHandler) list(c *gin.Context) {
	order := model.ParseSortOrder(c.Query("sort"))
	response.WriteData(c, http.StatusOK, h.svc.Players(c.Request.Context(), order))
}

func (h *PlayerHandler) lineup(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.Lineup(c.Request.Context()))
}

func (h *PlayerHandler) create(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.svc.AddPlayer(ctx, req.toNewPlayer())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, addStatus(res), res)
}

func (h *PlayerHandler) bulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.svc.AddPlayersFromText(ctx, req.Text)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, addStatus(res), res)
}

func (h *PlayerHandler) batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	batch := make([]roster.NewPlayer, 0, len(req.Players))
	for _, p := range req.Players {
		batch = append(batch, p.toNewPlayer())
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.svc.AddPlayers(ctx, batch)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, addStatus(res), res)
}

// addStatus is 201 when anything was added; a fully rejected batch is not an error.
func addStatus(res service.AddResult) int {
	if len(res.Added) > 0 {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *PlayerHandler) remove(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.svc.RemovePlayer(ctx, c.Param("id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlayerHandler) toggle(c *gin.Context) {
	start := time.Now()
	id := c.Param("id")
	confirm := parseBoolQuery(c.Query("confirm_swap"))

	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.svc.TogglePlayer(ctx, id, confirm)

	logger := log.With().
		Str("path", c.Request.URL.Path).
		Str("player_id", id).
		Bool("confirm_swap", confirm).
		Dur("duration", time.Since(start)).
		Logger()

	if err != nil {
		status, _ := response.MapError(err)
		logger.Debug().Err(err).Int("status", status).Msg("toggle refused")
		response.WriteError(c, err)
		return
	}
	logger.Debug().Str("result", string(res.Result)).Msg("toggle applied")
	response.WriteData(c, http.StatusOK, res)
}

func (h *PlayerHandler) updateStat(c *gin.Context) {
	var req statRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "delta", Message: "must be a non-zero integer"}}))
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.svc.UpdateStat(ctx, c.Param("id"), c.Param("stat_id"), req.Delta)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

func (h *PlayerHandler) togglePosition(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.svc.TogglePosition(ctx, c.Param("id"), model.Position(c.Param("position")))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

func (h *PlayerHandler) benchAll(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.svc.BenchAll(ctx); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, h.svc.Lineup(c.Request.Context()))
}

// parseIntQuery returns def when the parameter is missing or malformed.
func parseIntQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return def
	}
	return n
}
