package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/melodyforge/composer-backend/internal/projects/domain"
)

// PostgresRepository is the relational ProjectRepository. Expected schema:
//
//	projects(id text pk, client_name, client_email, client_phone,
//	         status, package_type, feedback, approved_version_id,
//	         created_at, expiration_date, last_activity_date)
//	project_versions(id text pk, project_id -> projects, position int,
//	         name, description, audio_url, recommended bool, final bool,
//	         created_at)
//	project_history(id text pk, project_id -> projects, action,
//	         created_at, data jsonb)
//	sequence project_id_seq (feeds the P0001 tokens)
//
// History rows are insert-only; Update appends whatever entries the
// aggregate carries that are not stored yet and never touches old rows.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create assigns the next sequential project id and inserts the aggregate.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Project) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if p.ID == "" {
		var seq int64
		if err := tx.QueryRow(ctx, `select nextval('project_id_seq')`).Scan(&seq); err != nil {
			return fmt.Errorf("failed to allocate project id: %w", err)
		}
		p.ID = domain.FormatProjectID(seq)
	}

	const q = `
insert into projects (id, client_name, client_email, client_phone, status,
                      package_type, feedback, approved_version_id,
                      created_at, expiration_date, last_activity_date)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`
	_, err = tx.Exec(ctx, q, p.ID, p.ClientName, p.ClientEmail, p.ClientPhone,
		p.Status, p.PackageType, p.Feedback, p.ApprovedVersion,
		p.CreatedAt, p.ExpirationDate, p.LastActivityDate)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	if err := r.writeVersions(ctx, tx, p); err != nil {
		return err
	}
	if err := r.appendHistory(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID loads the full aggregate: project row, versions in position
// order, history in insertion order.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const q = `
select id, client_name, client_email, client_phone, status, package_type,
       feedback, approved_version_id, created_at, expiration_date, last_activity_date
from projects
where id = $1;
`
	var p domain.Project
	err := r.db.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.ClientName, &p.ClientEmail, &p.ClientPhone, &p.Status,
		&p.PackageType, &p.Feedback, &p.ApprovedVersion,
		&p.CreatedAt, &p.ExpirationDate, &p.LastActivityDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if p.Versions, err = r.loadVersions(ctx, id); err != nil {
		return nil, err
	}
	if p.History, err = r.loadHistory(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// List loads all aggregates, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]domain.Project, error) {
	const q = `select id from projects order by created_at desc;`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Update rewrites the aggregate: project row updated in place, version set
// replaced wholesale, new history rows appended.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Project) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
update projects
set client_name = $2, client_email = $3, client_phone = $4, status = $5,
    feedback = $6, approved_version_id = $7, expiration_date = $8,
    last_activity_date = $9
where id = $1;
`
	ct, err := tx.Exec(ctx, q, p.ID, p.ClientName, p.ClientEmail, p.ClientPhone,
		p.Status, p.Feedback, p.ApprovedVersion, p.ExpirationDate, p.LastActivityDate)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}

	if _, err := tx.Exec(ctx, `delete from project_versions where project_id = $1`, p.ID); err != nil {
		return fmt.Errorf("failed to clear versions: %w", err)
	}
	if err := r.writeVersions(ctx, tx, p); err != nil {
		return err
	}
	if err := r.appendHistory(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete hard-deletes the project plus its versions and history.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `delete from project_history where project_id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to delete history: %w", err)
	}
	if _, err := tx.Exec(ctx, `delete from project_versions where project_id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to delete versions: %w", err)
	}
	ct, err := tx.Exec(ctx, `delete from projects where id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PostgresRepository) writeVersions(ctx context.Context, tx pgx.Tx, p *domain.Project) error {
	const q = `
insert into project_versions (id, project_id, position, name, description,
                              audio_url, recommended, final, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	for i, v := range p.Versions {
		_, err := tx.Exec(ctx, q, v.ID, p.ID, i, v.Name, v.Description,
			v.AudioURL, v.Recommended, v.Final, v.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert version %s: %w", v.ID, err)
		}
	}
	return nil
}

func (r *PostgresRepository) appendHistory(ctx context.Context, tx pgx.Tx, p *domain.Project) error {
	const q = `
insert into project_history (id, project_id, action, created_at, data)
values ($1, $2, $3, $4, $5)
on conflict (id) do nothing;
`
	for _, h := range p.History {
		data, err := json.Marshal(h.Data)
		if err != nil {
			data = []byte("{}")
		}
		if _, err := tx.Exec(ctx, q, h.ID, p.ID, h.Action, h.Timestamp, data); err != nil {
			return fmt.Errorf("failed to insert history entry %s: %w", h.ID, err)
		}
	}
	return nil
}

func (r *PostgresRepository) loadVersions(ctx context.Context, projectID string) ([]domain.Version, error) {
	const q = `
select id, name, description, audio_url, recommended, final, created_at
from project_versions
where project_id = $1
order by position;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Version, 0, 4)
	for rows.Next() {
		var v domain.Version
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.AudioURL,
			&v.Recommended, &v.Final, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) loadHistory(ctx context.Context, projectID string) ([]domain.HistoryEntry, error) {
	const q = `
select id, action, created_at, data
from project_history
where project_id = $1
order by created_at, id;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.HistoryEntry, 0, 8)
	for rows.Next() {
		var h domain.HistoryEntry
		var data []byte
		if err := rows.Scan(&h.ID, &h.Action, &h.Timestamp, &data); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &h.Data); err != nil {
				h.Data = nil
			}
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
