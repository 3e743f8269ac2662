package domain

import "time"

// Project is a client's composition engagement, tracked through the
// waiting -> feedback -> approved review lifecycle.
type Project struct {
	ID               string         `json:"id"`
	ClientName       string         `json:"client_name"`
	ClientEmail      string         `json:"client_email,omitempty"`
	ClientPhone      string         `json:"client_phone,omitempty"`
	Status           string         `json:"status"` // waiting, feedback, approved
	PackageType      string         `json:"package_type"`
	Versions         []Version      `json:"versions"`
	History          []HistoryEntry `json:"history"`
	Feedback         string         `json:"feedback,omitempty"` // last free-text message, mirrors history
	ApprovedVersion  string         `json:"approved_version_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	ExpirationDate   time.Time      `json:"expiration_date"`
	LastActivityDate time.Time      `json:"last_activity_date"`
}

// Status constants
const (
	StatusWaiting  = "waiting"
	StatusFeedback = "feedback"
	StatusApproved = "approved"
)

// Version is one candidate audio rendering attached to a project.
// Track numbering is positional: versions[i] is track i+1.
type Version struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	AudioURL    string    `json:"audio_url"`
	Recommended bool      `json:"recommended"`
	Final       bool      `json:"final"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProjectRequest carries the fields an admin (or intake trigger) may
// supply at creation; everything else is defaulted.
type CreateProjectRequest struct {
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	PackageType string `json:"package_type"`
}

// UpdateProjectRequest is a shallow merge: nil fields are left untouched.
type UpdateProjectRequest struct {
	ClientName       *string        `json:"client_name,omitempty"`
	ClientEmail      *string        `json:"client_email,omitempty"`
	ClientPhone      *string        `json:"client_phone,omitempty"`
	Status           *string        `json:"status,omitempty"`
	Feedback         *string        `json:"feedback,omitempty"`
	ApprovedVersion  *string        `json:"approved_version_id,omitempty"`
	Versions         []Version      `json:"versions,omitempty"`
	History          []HistoryEntry `json:"history,omitempty"`
	ExpirationDate   *time.Time     `json:"expiration_date,omitempty"`
	LastActivityDate *time.Time     `json:"last_activity_date,omitempty"`
}

// IsValidStatus checks if a status is valid
func IsValidStatus(status string) bool {
	return status == StatusWaiting ||
		status == StatusFeedback ||
		status == StatusApproved
}

// TrackNumber derives the display number for the version at index i.
// It is never stored; reordering or deletion renumbers implicitly.
func TrackNumber(i int) int { return i + 1 }
