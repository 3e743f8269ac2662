package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melodyforge/composer-backend/internal/events"
	"github.com/melodyforge/composer-backend/internal/projects/domain"
	"github.com/melodyforge/composer-backend/internal/projects/repository"
	"github.com/melodyforge/composer-backend/internal/projects/service"
	reviewhttp "github.com/melodyforge/composer-backend/internal/review/http"
	"github.com/melodyforge/composer-backend/internal/syncer"
)

// End-to-end over the Redis snapshot store: review callback HTTP -> bus ->
// coordinator -> service -> repository, then read back from Redis.
func setupSyncStack(t *testing.T) (*gin.Engine, *service.ProjectService, *domain.Project) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client, mr := setupTestRedis(t)
	t.Cleanup(func() { client.Close(); mr.Close() })

	svc := service.NewProjectService(repository.NewSnapshotRepository(client))
	bus := events.NewBus()
	syncer.NewCoordinator(svc).Register(bus)

	r := gin.New()
	reviewhttp.NewHandler(bus, "studio-secret").Register(r.Group("/api/v1/review"))

	p, err := svc.AddProject(context.Background(), &domain.CreateProjectRequest{
		ClientName:  "River Okafor",
		PackageType: "film-score",
	})
	require.NoError(t, err)
	return r, svc, p
}

func postCallback(r *gin.Engine, path string, body map[string]string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Review-Callback-Secret", "studio-secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSyncFlow_FeedbackThenApproval(t *testing.T) {
	r, svc, p := setupSyncStack(t)
	ctx := context.Background()

	w := postCallback(r, "/api/v1/review/events/feedback", map[string]string{
		"project_id": p.ID,
		"message":    "too slow tempo",
		"version_id": "v2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.GetProjectByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFeedback, got.Status)
	assert.Equal(t, "too slow tempo", got.Feedback)

	w = postCallback(r, "/api/v1/review/events/preview-approved", map[string]string{
		"project_id": p.ID,
		"version_id": "v2",
		"comments":   "approved!",
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err = svc.GetProjectByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	assert.Equal(t, "approved!", got.Feedback)
	assert.Equal(t, "v2", got.ApprovedVersion)

	// one creation entry plus one per event
	assert.Len(t, got.History, 3)
}

func TestSyncFlow_ManualResetAfterApproval(t *testing.T) {
	r, svc, p := setupSyncStack(t)
	ctx := context.Background()

	w := postCallback(r, "/api/v1/review/events/preview-approved", map[string]string{
		"project_id": p.ID,
		"version_id": "v1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.ReturnToWaiting(ctx, p.ID, "new versions added")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, got.Status)
	assert.Empty(t, got.ApprovedVersion)

	// state survived the durable store
	reloaded, err := svc.GetProjectByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, reloaded.Status)
	last := reloaded.History[len(reloaded.History)-1]
	assert.Equal(t, domain.ActionReturnedToWaiting, last.Action)
	assert.Equal(t, "new versions added", last.Data["reason"])
}

func TestSyncFlow_UnknownProjectDoesNotBreakBus(t *testing.T) {
	r, svc, p := setupSyncStack(t)

	w := postCallback(r, "/api/v1/review/events/feedback", map[string]string{
		"project_id": "P9999",
		"message":    "into the void",
	})
	// accepted at the HTTP edge; dropped by the coordinator
	require.Equal(t, http.StatusOK, w.Code)

	// bus still works for real projects afterward
	w = postCallback(r, "/api/v1/review/events/feedback", map[string]string{
		"project_id": p.ID,
		"message":    "still alive",
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.GetProjectByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFeedback, got.Status)
	assert.Equal(t, "still alive", got.Feedback)
}

func TestSyncFlow_VersionLifecycleOverSnapshots(t *testing.T) {
	_, svc, p := setupSyncStack(t)
	ctx := context.Background()

	v1, err := svc.AddVersion(ctx, p.ID, domain.Version{Name: "sketch", AudioURL: "https://audio.example/a"})
	require.NoError(t, err)
	v2, err := svc.AddVersion(ctx, p.ID, domain.Version{Name: "full arrangement", AudioURL: "https://audio.example/b"})
	require.NoError(t, err)

	_, err = svc.SetRecommended(ctx, p.ID, v2.ID)
	require.NoError(t, err)

	got, err := svc.GetProjectByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Versions, 2)
	assert.False(t, got.Versions[0].Recommended)
	assert.True(t, got.Versions[1].Recommended)

	ok, err := svc.DeleteVersion(ctx, p.ID, v1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = svc.GetProjectByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Versions, 1)
	assert.Equal(t, v2.ID, got.Versions[0].ID)
}
