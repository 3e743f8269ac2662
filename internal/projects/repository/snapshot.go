package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/melodyforge/composer-backend/internal/projects/domain"
)

const (
	projectKeyPrefix     = "proj:agg:"    // Full JSON aggregate: proj:agg:{project_id}
	projectIDSetKey      = "proj:ids"     // Set of all project ids
	projectSeqKey        = "proj:seq"     // Counter behind the P0001 tokens
	projectEventsPrefix  = "proj:events:" // Pub/Sub channel for aggregate updates: proj:events:{project_id}
)

// SnapshotRepository keeps each project as one keyed JSON document in
// Redis. It is the document-store rendition of ProjectRepository; the
// relational PostgresRepository is the production one.
type SnapshotRepository struct {
	client *redis.Client
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(client *redis.Client) *SnapshotRepository {
	return &SnapshotRepository{client: client}
}

// Create assigns the next sequential project id and stores the aggregate.
func (r *SnapshotRepository) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		seq, err := r.client.Incr(ctx, projectSeqKey).Result()
		if err != nil {
			return fmt.Errorf("failed to allocate project id: %w", err)
		}
		p.ID = domain.FormatProjectID(seq)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.projectKey(p.ID), data, 0)
	pipe.SAdd(ctx, projectIDSetKey, p.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project aggregate by its id.
func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	data, err := r.client.Get(ctx, r.projectKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	var p domain.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	return &p, nil
}

// List retrieves every stored project aggregate.
func (r *SnapshotRepository) List(ctx context.Context) ([]domain.Project, error) {
	ids, err := r.client.SMembers(ctx, projectIDSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list project ids: %w", err)
	}

	out := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetByID(ctx, id)
		if err == domain.ErrProjectNotFound {
			// id-set can briefly outlive a deleted aggregate
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Update rewrites the full aggregate and publishes the new state on the
// project's event channel for any listening surfaces.
func (r *SnapshotRepository) Update(ctx context.Context, p *domain.Project) error {
	if _, err := r.GetByID(ctx, p.ID); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	if err := r.client.Set(ctx, r.projectKey(p.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if p.ID != "" && p.Status != "" {
		r.client.Publish(ctx, r.projectEventChannel(p.ID), data)
	}
	return nil
}

// Delete removes the aggregate and its id-set entry. Unknown ids are a
// no-op reported as false.
func (r *SnapshotRepository) Delete(ctx context.Context, id string) (bool, error) {
	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, r.projectKey(id))
	pipe.SRem(ctx, projectIDSetKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	return del.Val() > 0, nil
}

func (r *SnapshotRepository) projectKey(id string) string {
	return fmt.Sprintf("%s%s", projectKeyPrefix, id)
}

func (r *SnapshotRepository) projectEventChannel(id string) string {
	return fmt.Sprintf("%s%s", projectEventsPrefix, id)
}
