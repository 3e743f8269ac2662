package service

import (
	"context"
	"sync"
	"time"

	"github.com/melodyforge/composer-backend/internal/projects/domain"
	"github.com/melodyforge/composer-backend/internal/projects/repository"
)

// DefaultDeadline is the review window granted at creation and added per
// extension.
const DefaultDeadline = 7 * 24 * time.Hour

// ProjectService owns project aggregates for the life of the process.
// Mutations are serialized behind a mutex: expected concurrency per
// project is single-writer (one admin, one review surface), but the lock
// keeps two in-process callers from silently overwriting each other.
// Cross-process writers still race; that limitation is documented, not
// solved here.
type ProjectService struct {
	mu   sync.Mutex
	repo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo repository.ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

// AddProject creates a project with defaulted status, deadline, and an
// initial history entry, and returns it with its assigned id.
func (s *ProjectService) AddProject(ctx context.Context, req *domain.CreateProjectRequest) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p := &domain.Project{
		ClientName:       req.ClientName,
		ClientEmail:      req.ClientEmail,
		ClientPhone:      req.ClientPhone,
		Status:           domain.StatusWaiting,
		PackageType:      req.PackageType,
		Versions:         []domain.Version{},
		History:          []domain.HistoryEntry{domain.NewHistoryEntry(domain.ActionCreated, nil)},
		CreatedAt:        now,
		ExpirationDate:   now.Add(DefaultDeadline),
		LastActivityDate: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProjectByID retrieves a project by its id.
func (s *ProjectService) GetProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProjects retrieves all projects.
func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.repo.List(ctx)
}

// UpdateProject shallow-merges req into the stored aggregate and persists
// it. Supplying Versions replaces the version list (the authoritative
// count is its length); supplying History replaces the slice, which by
// convention is always the old slice plus appended entries.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, id, req)
}

func (s *ProjectService) updateLocked(ctx context.Context, id string, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !domain.IsValidStatus(*req.Status) {
			return nil, domain.ErrInvalidStatus
		}
		p.Status = *req.Status
	}
	if req.ClientName != nil {
		p.ClientName = *req.ClientName
	}
	if req.ClientEmail != nil {
		p.ClientEmail = *req.ClientEmail
	}
	if req.ClientPhone != nil {
		p.ClientPhone = *req.ClientPhone
	}
	if req.Feedback != nil {
		p.Feedback = *req.Feedback
	}
	if req.ApprovedVersion != nil {
		p.ApprovedVersion = *req.ApprovedVersion
	}
	if req.Versions != nil {
		p.Versions = req.Versions
	}
	if req.History != nil {
		p.History = req.History
	}
	if req.ExpirationDate != nil {
		p.ExpirationDate = *req.ExpirationDate
	}
	if req.LastActivityDate != nil {
		p.LastActivityDate = *req.LastActivityDate
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject hard-deletes a project with its versions and history.
// Deleting an unknown id is a no-op reported as false.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx, id)
}

// ExtendDeadline pushes the expiration date out by one more review window
// and records the extension. Returns false for unknown projects.
func (s *ProjectService) ExtendDeadline(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, id)
	if err == domain.ErrProjectNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	newExp := p.ExpirationDate.Add(DefaultDeadline)
	now := time.Now().UTC()
	entry := domain.NewHistoryEntry(domain.ActionDeadlineExtended, map[string]any{
		"expiration_date": newExp.Format(time.RFC3339),
	})
	_, err = s.updateLocked(ctx, id, &domain.UpdateProjectRequest{
		ExpirationDate:   &newExp,
		LastActivityDate: &now,
		History:          append(p.History, entry),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReturnToWaiting is the admin-only manual reset: status back to waiting,
// approval marker cleared so the review surface accepts a fresh cycle,
// reason preserved in history.
func (s *ProjectService) ReturnToWaiting(ctx context.Context, id, reason string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := domain.StatusWaiting
	cleared := ""
	now := time.Now().UTC()
	entry := domain.NewHistoryEntry(domain.ActionReturnedToWaiting, map[string]any{
		"reason": reason,
	})
	return s.updateLocked(ctx, id, &domain.UpdateProjectRequest{
		Status:           &status,
		ApprovedVersion:  &cleared,
		LastActivityDate: &now,
		History:          append(p.History, entry),
	})
}

// ExpiringProjects lists projects whose deadline falls within the given
// window. Already-expired projects are included; the sweep wants both.
func (s *ProjectService) ExpiringProjects(ctx context.Context, within time.Duration) ([]domain.Project, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(within)
	out := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if p.ExpirationDate.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}
