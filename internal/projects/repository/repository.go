package repository

import (
	"context"

	"github.com/melodyforge/composer-backend/internal/projects/domain"
)

// ProjectRepository is the durable home of project aggregates. The service
// owns merge semantics; implementations only load and store whole
// aggregates. GetByID returns domain.ErrProjectNotFound for unknown ids,
// and Delete reports false (no error) when there was nothing to delete.
type ProjectRepository interface {
	// Create assigns the next sequential project id and stores the
	// aggregate. The id is written back into p.
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	// Update rewrites the full aggregate (project row, version set,
	// history) keyed by p.ID.
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) (bool, error)
}
