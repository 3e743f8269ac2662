package events

// Type tags one kind of review-surface event.
type Type string

const (
	TypePreviewApproved  Type = "preview_approved"
	TypeFeedbackReceived Type = "feedback_received"
	TypeProjectCreated   Type = "project_created"
	TypeProjectUpdated   Type = "project_updated"
)

// PreviewApproved is raised when the client signs off on a version.
type PreviewApproved struct {
	ProjectID string `json:"project_id"`
	VersionID string `json:"version_id"`
	Comments  string `json:"comments,omitempty"`
}

// FeedbackReceived carries a client note on a version (or the project as a
// whole when VersionID is empty).
type FeedbackReceived struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message"`
	VersionID string `json:"version_id,omitempty"`
}

// ProjectCreated is informational; no status mutation follows from it.
type ProjectCreated struct {
	ProjectID string `json:"project_id"`
}

// ProjectUpdated is informational; Timestamp is the surface's ISO8601
// string, passed through untouched.
type ProjectUpdated struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
