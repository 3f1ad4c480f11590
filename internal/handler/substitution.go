package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/equalplay-service/internal/service"
	"github.com/maxviazov/equalplay-service/pkg/response"
)

type SubstitutionHandler struct {
	svc service.SubstitutionService
}

func NewSubstitutionHandler(svc service.SubstitutionService) *SubstitutionHandler {
	return &SubstitutionHandler{svc: svc}
}

func (h *SubstitutionHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/substitutions")
	{
		g.GET("/suggestions", h.suggestions)
		g.POST("/swap", h.swap)
		g.GET("/staged", h.staged)
		g.POST("/staged", h.stage)
		g.DELETE("/staged", h.clear)
		g.DELETE("/staged/:id", h.unstage)
		g.POST("/staged/commit", h.commit)
	}
}

type swapRequest struct {
	OffID string `json:"off_id" binding:"required"`
	OnID  string `json:"on_id" binding:"required,nefield=OffID"`
}

type commitResponse struct {
	Committed int `json:"committed"`
}

// suggestions honours ?max= (clamped to 1..10) and ?position_aware=; both default to settings.
func (h *SubstitutionHandler) suggestions(c *gin.Context) {
	maxCount := parseIntQuery(c, "max", 0)
	var aware *bool
	if raw := strings.TrimSpace(c.Query("position_aware")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "position_aware", Message: "must be a boolean"}}))
			return
		}
		aware = &v
	}
	response.WriteData(c, http.StatusOK, h.svc.Suggestions(c.Request.Context(), maxCount, aware))
}

func (h *SubstitutionHandler) swap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.svc.ExecuteSwap(ctx, req.OffID, req.OnID); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubstitutionHandler) staged(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.Staged(c.Request.Context()))
}

func (h *SubstitutionHandler) stage(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	sub, err := h.svc.Stage(ctx, req.OffID, req.OnID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, sub)
}

func (h *SubstitutionHandler) unstage(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.svc.Unstage(ctx, c.Param("id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubstitutionHandler) clear(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.svc.ClearStaged(ctx); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubstitutionHandler) commit(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	n, err := h.svc.CommitStaged(ctx)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, commitResponse{Committed: n})
}
