package http

import (
	"github.com/melodyforge/composer-backend/internal/audio"
	"github.com/melodyforge/composer-backend/internal/projects/service"
)

// Handler bundles the dependencies for the admin project endpoints. The
// admin surface is gated upstream (reverse proxy); handlers only translate
// HTTP to service calls.
type Handler struct {
	svc       *service.ProjectService
	audioHost audio.Host // nil when no provider is configured
}

// New creates a new Handler
func New(svc *service.ProjectService, audioHost audio.Host) *Handler {
	return &Handler{svc: svc, audioHost: audioHost}
}

type createProjectReq struct {
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	PackageType string `json:"package_type"`
}

type addVersionReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AudioURL    string `json:"audio_url"`
	Recommended bool   `json:"recommended"`
}

type returnToWaitingReq struct {
	Reason string `json:"reason"`
}

type setFinalReq struct {
	Final bool `json:"final"`
}
