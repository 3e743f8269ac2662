package service

import (
	"context"
	"time"

	"github.com/melodyforge/composer-backend/internal/projects/domain"
	"github.com/melodyforge/composer-backend/internal/projects/utils"
)

// Version catalog operations. Versions are appended in order; the display
// track number is the position in the slice plus one, recomputed on every
// read rather than stored.

// AddVersion appends a version to a project, assigning an id and creation
// time when absent, and records it in history.
func (s *ProjectService) AddVersion(ctx context.Context, projectID string, v domain.Version) (*domain.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if v.ID == "" {
		id, err := utils.NewID("ver")
		if err != nil {
			return nil, err
		}
		v.ID = id
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	versions := append(p.Versions, v)
	now := time.Now().UTC()
	entry := domain.NewHistoryEntry(domain.ActionVersionAdded, map[string]any{
		"version_id": v.ID,
		"name":       v.Name,
		"track":      domain.TrackNumber(len(versions) - 1),
	})
	_, err = s.updateLocked(ctx, projectID, &domain.UpdateProjectRequest{
		Versions:         versions,
		History:          append(p.History, entry),
		LastActivityDate: &now,
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteVersion removes a version by id and reports whether a removal
// occurred. The version list is left untouched on a miss.
func (s *ProjectService) DeleteVersion(ctx context.Context, projectID, versionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, projectID)
	if err == domain.ErrProjectNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	idx := -1
	for i, v := range p.Versions {
		if v.ID == versionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	versions := append(append([]domain.Version{}, p.Versions[:idx]...), p.Versions[idx+1:]...)
	now := time.Now().UTC()
	entry := domain.NewHistoryEntry(domain.ActionVersionRemoved, map[string]any{
		"version_id": versionID,
	})
	_, err = s.updateLocked(ctx, projectID, &domain.UpdateProjectRequest{
		Versions:         versions,
		History:          append(p.History, entry),
		LastActivityDate: &now,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetRecommended marks one version as the default presented to the client
// and clears the flag on every sibling. This is the single place the
// exclusivity rule lives; direct version edits can still bypass it.
func (s *ProjectService) SetRecommended(ctx context.Context, projectID, versionID string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	found := false
	versions := make([]domain.Version, len(p.Versions))
	for i, v := range p.Versions {
		v.Recommended = v.ID == versionID
		if v.Recommended {
			found = true
		}
		versions[i] = v
	}
	if !found {
		return nil, domain.ErrVersionNotFound
	}

	return s.updateLocked(ctx, projectID, &domain.UpdateProjectRequest{Versions: versions})
}

// SetFinal flags or unflags a version as the delivered master. Unlike
// recommended there is no exclusivity rule; several versions can carry it.
func (s *ProjectService) SetFinal(ctx context.Context, projectID, versionID string, final bool) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	found := false
	versions := append([]domain.Version{}, p.Versions...)
	for i, v := range versions {
		if v.ID == versionID {
			versions[i].Final = final
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrVersionNotFound
	}

	return s.updateLocked(ctx, projectID, &domain.UpdateProjectRequest{Versions: versions})
}
