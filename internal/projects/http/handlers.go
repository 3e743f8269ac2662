package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/melodyforge/composer-backend/internal/projects/domain"
)

func (h *Handler) create(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ClientName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.AddProject(c.Request.Context(), &domain.CreateProjectRequest{
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientEmail: strings.TrimSpace(req.ClientEmail),
		ClientPhone: strings.TrimSpace(req.ClientPhone),
		PackageType: req.PackageType,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListProjects(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetProjectByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.UpdateProject(c.Request.Context(), c.Param("id"), &req)
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if errors.Is(err, domain.ErrInvalidStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid status"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.DeleteProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) addVersion(c *gin.Context) {
	var req addVersionReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	v, err := h.svc.AddVersion(c.Request.Context(), c.Param("id"), domain.Version{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		AudioURL:    req.AudioURL,
		Recommended: req.Recommended,
	})
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "version": v})
}

func (h *Handler) deleteVersion(c *gin.Context) {
	ok, err := h.svc.DeleteVersion(c.Request.Context(), c.Param("id"), c.Param("version_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "version not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) setRecommended(c *gin.Context) {
	p, err := h.svc.SetRecommended(c.Request.Context(), c.Param("id"), c.Param("version_id"))
	if errors.Is(err, domain.ErrProjectNotFound) || errors.Is(err, domain.ErrVersionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) setFinal(c *gin.Context) {
	var req setFinalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.SetFinal(c.Request.Context(), c.Param("id"), c.Param("version_id"), req.Final)
	if errors.Is(err, domain.ErrProjectNotFound) || errors.Is(err, domain.ErrVersionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) versionEmbed(c *gin.Context) {
	if h.audioHost == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "audio host not configured"})
		return
	}

	p, err := h.svc.GetProjectByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	versionID := c.Param("version_id")
	for _, v := range p.Versions {
		if v.ID != versionID {
			continue
		}
		embed, err := h.audioHost.ResolveEmbed(c.Request.Context(), v.AudioURL)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "embed": embed})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "version not found"})
}

func (h *Handler) extendDeadline(c *gin.Context) {
	ok, err := h.svc.ExtendDeadline(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) returnToWaiting(c *gin.Context) {
	var req returnToWaitingReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "reason is required"})
		return
	}

	p, err := h.svc.ReturnToWaiting(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Reason))
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}
