package http

import "github.com/gin-gonic/gin"

// Register attaches the admin project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)

	rg.POST("/:id/versions", h.addVersion)
	rg.DELETE("/:id/versions/:version_id", h.deleteVersion)
	rg.POST("/:id/versions/:version_id/recommend", h.setRecommended)
	rg.POST("/:id/versions/:version_id/final", h.setFinal)
	rg.GET("/:id/versions/:version_id/embed", h.versionEmbed)

	rg.POST("/:id/extend-deadline", h.extendDeadline)
	rg.POST("/:id/return-to-waiting", h.returnToWaiting)
}
