package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melodyforge/composer-backend/internal/events"
)

func setupRouter(secret string) (*gin.Engine, *events.Bus) {
	gin.SetMode(gin.TestMode)
	bus := events.NewBus()
	r := gin.New()
	NewHandler(bus, secret).Register(r.Group("/review"))
	return r, bus
}

func postJSON(r *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCallback_PublishesFeedbackEvent(t *testing.T) {
	r, bus := setupRouter("")

	var got events.FeedbackReceived
	bus.Subscribe(events.TypeFeedbackReceived, func(payload any) {
		got = payload.(events.FeedbackReceived)
	})

	w := postJSON(r, "/review/events/feedback", map[string]string{
		"project_id": "P0001",
		"message":    "too slow tempo",
		"version_id": "v2",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "P0001", got.ProjectID)
	assert.Equal(t, "too slow tempo", got.Message)
	assert.Equal(t, "v2", got.VersionID)
}

func TestCallback_PublishesApprovalEvent(t *testing.T) {
	r, bus := setupRouter("")

	var got events.PreviewApproved
	bus.Subscribe(events.TypePreviewApproved, func(payload any) {
		got = payload.(events.PreviewApproved)
	})

	w := postJSON(r, "/review/events/preview-approved", map[string]string{
		"project_id": "P0001",
		"version_id": "v2",
		"comments":   "approved!",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "P0001", got.ProjectID)
	assert.Equal(t, "approved!", got.Comments)
}

func TestCallback_SecretEnforced(t *testing.T) {
	r, bus := setupRouter("hunter2")

	delivered := 0
	bus.Subscribe(events.TypeFeedbackReceived, func(any) { delivered++ })

	body := map[string]string{"project_id": "P0001", "message": "hi"}

	t.Run("missing secret rejected", func(t *testing.T) {
		w := postJSON(r, "/review/events/feedback", body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, delivered)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		w := postJSON(r, "/review/events/feedback", body, map[string]string{
			"X-Review-Callback-Secret": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, delivered)
	})

	t.Run("correct secret accepted", func(t *testing.T) {
		w := postJSON(r, "/review/events/feedback", body, map[string]string{
			"X-Review-Callback-Secret": "hunter2",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, delivered)
	})
}

func TestCallback_MissingProjectIDRejected(t *testing.T) {
	r, bus := setupRouter("")

	delivered := 0
	bus.Subscribe(events.TypeFeedbackReceived, func(any) { delivered++ })
	bus.Subscribe(events.TypePreviewApproved, func(any) { delivered++ })

	w := postJSON(r, "/review/events/feedback", map[string]string{"message": "orphan"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/review/events/preview-approved", map[string]string{"version_id": "v1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 0, delivered, "rejected callbacks must not reach the bus")
}

func TestCallback_MalformedBodyRejected(t *testing.T) {
	r, _ := setupRouter("")

	req := httptest.NewRequest("POST", "/review/events/feedback", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_ProjectUpdatedPassthrough(t *testing.T) {
	r, bus := setupRouter("")

	var got events.ProjectUpdated
	bus.Subscribe(events.TypeProjectUpdated, func(payload any) {
		got = payload.(events.ProjectUpdated)
	})

	w := postJSON(r, "/review/events/project-updated", map[string]string{
		"project_id": "P0001",
		"status":     "feedback",
		"timestamp":  "2026-08-30T12:00:00Z",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "feedback", got.Status)
	assert.Equal(t, "2026-08-30T12:00:00Z", got.Timestamp)
}
