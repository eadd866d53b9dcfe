package api

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every route under /api.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/health", h.health)

		api.POST("/analyze", h.analyze)
		api.POST("/keywords", h.keywords)
		api.POST("/extract", h.extract)
		api.POST("/site-audit", h.siteAudit)

		api.GET("/history", h.history)
		api.GET("/statistics", h.statistics)
		api.GET("/cache", h.cacheStats)
		api.DELETE("/cache", h.clearCache)
	}
}

// AuditPaths are the routes counted as audit requests.
var AuditPaths = []string{"/api/analyze", "/api/keywords", "/api/extract", "/api/site-audit"}

// NewRouter builds a gin engine with the given middleware and the API routes.
func NewRouter(h *Handler, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	h.Register(r)
	return r
}
