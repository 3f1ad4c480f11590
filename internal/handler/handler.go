package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/equalplay-service/internal/service"
)

// Register mounts all public routes on the given engine.
// svc may be nil when only the probes and docs are needed.
func Register(r *gin.Engine, repo Pinger, svc service.MatchService) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		if svc == nil {
			return
		}
		NewMatchHandler(svc).Register(api)
		NewPlayerHandler(svc).Register(api)
		NewSubstitutionHandler(svc).Register(api)
		NewFairnessHandler(svc).Register(api)
		NewSettingsHandler(svc).Register(api)
	}
}
