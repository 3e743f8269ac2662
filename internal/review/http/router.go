package http

import "github.com/gin-gonic/gin"

// Register registers routes intended to be called by the review surface
// (shared-secret auth, no admin gating).
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/events/preview-approved", h.PreviewApproved)
	rg.POST("/events/feedback", h.FeedbackReceived)
	rg.POST("/events/project-created", h.ProjectCreated)
	rg.POST("/events/project-updated", h.ProjectUpdated)
}
