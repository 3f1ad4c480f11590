package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/service"
	"github.com/maxviazov/equalplay-service/pkg/response"
)

type SettingsHandler struct {
	svc service.SettingsService
}

func NewSettingsHandler(svc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

func (h *SettingsHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/settings")
	{
		g.GET("", h.get)
		g.PUT("", h.update)
		g.GET("/stats", h.listStats)
		g.POST("/stats", h.addStat)
		g.POST("/stats/:id/toggle", h.toggleStat)
		g.DELETE("/stats/:id", h.removeStat)
		g.PUT("/sort", h.setSort)
	}
}

type addStatRequest struct {
	Name string `json:"name" binding:"required,max=32"`
	Icon string `json:"icon" binding:"max=16"`
}

type sortRequest struct {
	Field string `json:"field"`
	Bench string `json:"bench"`
}

func (h *SettingsHandler) get(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.Settings(c.Request.Context()))
}

// update clamps out-of-range values instead of rejecting them.
func (h *SettingsHandler) update(c *gin.Context) {
	var req service.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	s, err := h.svc.UpdateSettings(ctx, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, s)
}

func (h *SettingsHandler) listStats(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.CustomStats(c.Request.Context()))
}

func (h *SettingsHandler) addStat(c *gin.Context) {
	var req addStatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "name", Message: "is required"}}))
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	stat, err := h.svc.AddCustomStat(ctx, req.Name, req.Icon)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, stat)
}

func (h *SettingsHandler) toggleStat(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	stat, err := h.svc.ToggleCustomStat(ctx, c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, stat)
}

func (h *SettingsHandler) removeStat(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.svc.RemoveCustomStat(ctx, c.Param("id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SettingsHandler) setSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	pref, err := h.svc.SetSortPreference(ctx, model.SortPreference{
		Field: model.SortOrder(req.Field),
		Bench: model.SortOrder(req.Bench),
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, pref)
}
