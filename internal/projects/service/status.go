package service

import (
	"context"
	"time"

	"github.com/melodyforge/composer-backend/internal/projects/domain"
)

// Status transitions driven by review events. Each operation reads and
// rewrites the aggregate inside the service mutex so concurrent events
// cannot base their history append on the same stale slice.

// ApplyApproval records the client's sign-off: status approved, the chosen
// version pinned, comments kept as the latest feedback, audit entry
// appended.
func (s *ProjectService) ApplyApproval(ctx context.Context, id, versionID, comments string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := domain.StatusApproved
	now := time.Now().UTC()
	entry := domain.NewHistoryEntry(domain.ActionApproved, map[string]any{
		"version_id": versionID,
		"comments":   comments,
	})
	return s.updateLocked(ctx, id, &domain.UpdateProjectRequest{
		Status:           &status,
		Feedback:         &comments,
		ApprovedVersion:  &versionID,
		LastActivityDate: &now,
		History:          append(p.History, entry),
	})
}

// ApplyFeedback records a client note: status feedback, message stored as
// the latest feedback, audit entry appended. The version id is optional
// and recorded only when present.
func (s *ProjectService) ApplyFeedback(ctx context.Context, id, message, versionID string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := domain.StatusFeedback
	now := time.Now().UTC()
	data := map[string]any{"message": message}
	if versionID != "" {
		data["version_id"] = versionID
	}
	entry := domain.NewHistoryEntry(domain.ActionFeedbackReceived, data)
	return s.updateLocked(ctx, id, &domain.UpdateProjectRequest{
		Status:           &status,
		Feedback:         &message,
		LastActivityDate: &now,
		History:          append(p.History, entry),
	})
}

// TouchActivity bumps last_activity_date and nothing else.
func (s *ProjectService) TouchActivity(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	_, err := s.updateLocked(ctx, id, &domain.UpdateProjectRequest{LastActivityDate: &now})
	return err
}
