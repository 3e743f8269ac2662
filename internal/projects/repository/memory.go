package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/melodyforge/composer-backend/internal/projects/domain"
)

// MemoryRepository is an in-process ProjectRepository used in tests and in
// single-node setups without Redis or Postgres. Aggregates are deep-copied
// on the way in and out so callers never share slices with the store.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]domain.Project
	seq      int64
}

// NewMemoryRepository creates a new MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{projects: make(map[string]domain.Project)}
}

func (r *MemoryRepository) Create(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		r.seq++
		p.ID = domain.FormatProjectID(r.seq)
	}
	r.projects[p.ID] = cloneProject(*p)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	c := cloneProject(p)
	return &c, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.projects[p.ID] = cloneProject(*p)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return false, nil
	}
	delete(r.projects, id)
	return true, nil
}

func cloneProject(p domain.Project) domain.Project {
	c := p
	c.Versions = append([]domain.Version(nil), p.Versions...)
	c.History = append([]domain.HistoryEntry(nil), p.History...)
	return c
}
