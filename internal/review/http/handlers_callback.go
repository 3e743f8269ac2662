package http

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/melodyforge/composer-backend/internal/events"
)

// Handler receives callbacks from the client-facing preview/review surface
// and republishes them as typed events on the in-process bus. The surface
// is the sole publisher; everything downstream subscribes.
type Handler struct {
	bus            *events.Bus
	callbackSecret string
}

// NewHandler creates a new Handler
func NewHandler(bus *events.Bus, callbackSecret string) *Handler {
	return &Handler{bus: bus, callbackSecret: callbackSecret}
}

// PreviewApprovedBody represents the approval callback payload
type PreviewApprovedBody struct {
	ProjectID string `json:"project_id"`
	VersionID string `json:"version_id"`
	Comments  string `json:"comments"`
}

// FeedbackBody represents the feedback callback payload
type FeedbackBody struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message"`
	VersionID string `json:"version_id"`
}

// ProjectCreatedBody represents the project-created callback payload
type ProjectCreatedBody struct {
	ProjectID string `json:"project_id"`
}

// ProjectUpdatedBody represents the project-updated callback payload
type ProjectUpdatedBody struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// authorize checks the shared-secret header (review-surface-to-backend).
// If no secret is configured, requests pass (local development).
func (h *Handler) authorize(c *gin.Context) bool {
	if h.callbackSecret == "" {
		return true
	}
	secret := c.GetHeader("X-Review-Callback-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.callbackSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: invalid callback secret"})
		return false
	}
	return true
}

// PreviewApproved handles the client's sign-off on a version.
func (h *Handler) PreviewApproved(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var body PreviewApprovedBody
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("[review] preview-approved JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if body.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	h.bus.Publish(events.TypePreviewApproved, events.PreviewApproved{
		ProjectID: body.ProjectID,
		VersionID: body.VersionID,
		Comments:  body.Comments,
	})
	c.JSON(http.StatusOK, gin.H{"message": "event processed", "project_id": body.ProjectID})
}

// FeedbackReceived handles a client feedback note.
func (h *Handler) FeedbackReceived(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var body FeedbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("[review] feedback JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if body.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	h.bus.Publish(events.TypeFeedbackReceived, events.FeedbackReceived{
		ProjectID: body.ProjectID,
		Message:   body.Message,
		VersionID: body.VersionID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "event processed", "project_id": body.ProjectID})
}

// ProjectCreated handles the informational creation notice.
func (h *Handler) ProjectCreated(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var body ProjectCreatedBody
	if err := c.ShouldBindJSON(&body); err != nil || body.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	h.bus.Publish(events.TypeProjectCreated, events.ProjectCreated{ProjectID: body.ProjectID})
	c.JSON(http.StatusOK, gin.H{"message": "event processed", "project_id": body.ProjectID})
}

// ProjectUpdated handles the informational update notice.
func (h *Handler) ProjectUpdated(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var body ProjectUpdatedBody
	if err := c.ShouldBindJSON(&body); err != nil || body.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	h.bus.Publish(events.TypeProjectUpdated, events.ProjectUpdated{
		ProjectID: body.ProjectID,
		Status:    body.Status,
		Timestamp: body.Timestamp,
	})
	c.JSON(http.StatusOK, gin.H{"message": "event processed", "project_id": body.ProjectID})
}
