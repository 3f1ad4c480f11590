package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/equalplay-service/internal/service"
	"github.com/maxviazov/equalplay-service/pkg/response"
)

type FairnessHandler struct {
	svc service.FairnessService
}

func NewFairnessHandler(svc service.FairnessService) *FairnessHandler {
	return &FairnessHandler{svc: svc}
}

func (h *FairnessHandler) Register(r *gin.RouterGroup) {
	r.GET("/fairness", h.get)
}

func (h *FairnessHandler) get(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.MinutesStats(c.Request.Context()))
}
