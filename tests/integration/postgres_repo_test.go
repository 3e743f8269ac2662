package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melodyforge/composer-backend/internal/projects/domain"
	"github.com/melodyforge/composer-backend/internal/projects/repository"
)

// setupTestPostgres connects to a test PostgreSQL instance and creates the
// project tables. Skips the test if TEST_DB_DSN is not set.
// You can set TEST_DB_DSN directly, or use individual env vars:
//
//	TEST_DB_HOST, TEST_DB_PORT, TEST_DB_USER, TEST_DB_PASSWORD, TEST_DB_NAME
func setupTestPostgres(t *testing.T) *pgxpool.Pool {
	dsn := os.Getenv("TEST_DB_DSN")

	// If TEST_DB_DSN is not set, try to construct it from individual env vars
	if dsn == "" {
		host := os.Getenv("TEST_DB_HOST")
		port := os.Getenv("TEST_DB_PORT")
		user := os.Getenv("TEST_DB_USER")
		password := os.Getenv("TEST_DB_PASSWORD")
		dbname := os.Getenv("TEST_DB_NAME")

		if host != "" && port != "" && user != "" && dbname != "" {
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				host, port, user, password, dbname)
		} else {
			t.Skip("TEST_DB_DSN or TEST_DB_* environment variables not set, skipping PostgreSQL integration test")
		}
	}

	// Schema setup goes through database/sql so it stays independent of the
	// pool under test.
	setupDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer setupDB.Close()
	require.NoError(t, setupDB.Ping())

	for _, q := range []string{
		`create sequence if not exists project_id_seq`,
		`create table if not exists projects (
			id text primary key,
			client_name text not null default '',
			client_email text not null default '',
			client_phone text not null default '',
			status text not null default 'waiting',
			package_type text not null default '',
			feedback text not null default '',
			approved_version_id text not null default '',
			created_at timestamptz not null,
			expiration_date timestamptz not null,
			last_activity_date timestamptz not null
		)`,
		`create table if not exists project_versions (
			id text primary key,
			project_id text not null references projects(id),
			position int not null,
			name text not null default '',
			description text not null default '',
			audio_url text not null default '',
			recommended boolean not null default false,
			final boolean not null default false,
			created_at timestamptz not null
		)`,
		`create table if not exists project_history (
			id text primary key,
			project_id text not null references projects(id),
			action text not null,
			created_at timestamptz not null,
			data jsonb
		)`,
	} {
		_, err := setupDB.Exec(q)
		require.NoError(t, err)
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(context.Background()))
	return pool
}

func TestPostgresRepository_CreateAndGet(t *testing.T) {
	pool := setupTestPostgres(t)
	defer pool.Close()

	repo := repository.NewPostgresRepository(pool)
	ctx := context.Background()

	p := sampleProject()
	p.ID = "" // force sequence allocation
	require.NoError(t, repo.Create(ctx, p))
	defer repo.Delete(ctx, p.ID)

	assert.Regexp(t, `^P\d{4,}$`, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ClientName, got.ClientName)
	assert.Equal(t, p.Status, got.Status)
	assert.Len(t, got.Versions, len(p.Versions))
	assert.Len(t, got.History, len(p.History))
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Second)
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	pool := setupTestPostgres(t)
	defer pool.Close()

	repo := repository.NewPostgresRepository(pool)
	_, err := repo.GetByID(context.Background(), "P0000")
	assert.Equal(t, domain.ErrProjectNotFound, err)
}

func TestPostgresRepository_Update(t *testing.T) {
	pool := setupTestPostgres(t)
	defer pool.Close()

	repo := repository.NewPostgresRepository(pool)
	ctx := context.Background()

	p := sampleProject()
	p.ID = ""
	require.NoError(t, repo.Create(ctx, p))
	defer repo.Delete(ctx, p.ID)

	t.Run("persists state and appends history", func(t *testing.T) {
		p.Status = domain.StatusFeedback
		p.Feedback = "shorten the intro"
		p.History = append(p.History, domain.NewHistoryEntry(domain.ActionFeedbackReceived, map[string]any{
			"message": "shorten the intro",
		}))
		require.NoError(t, repo.Update(ctx, p))

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFeedback, got.Status)
		assert.Equal(t, "shorten the intro", got.Feedback)
		assert.Len(t, got.History, len(p.History))
	})

	t.Run("replaces the version set wholesale", func(t *testing.T) {
		p.Versions = []domain.Version{{
			ID:        "ver_pgonly",
			Name:      "revised mix",
			AudioURL:  "https://audio.example/revised",
			CreatedAt: time.Now().UTC(),
		}}
		require.NoError(t, repo.Update(ctx, p))

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, got.Versions, 1)
		assert.Equal(t, "ver_pgonly", got.Versions[0].ID)
	})

	t.Run("unknown project", func(t *testing.T) {
		ghost := sampleProject()
		ghost.ID = "P0000"
		err := repo.Update(ctx, ghost)
		assert.Equal(t, domain.ErrProjectNotFound, err)
	})
}

func TestPostgresRepository_Delete(t *testing.T) {
	pool := setupTestPostgres(t)
	defer pool.Close()

	repo := repository.NewPostgresRepository(pool)
	ctx := context.Background()

	p := sampleProject()
	p.ID = ""
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, p.ID)
	assert.Equal(t, domain.ErrProjectNotFound, err)

	ok, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
