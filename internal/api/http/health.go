package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db,omitempty"`
	Snapshots string    `json:"snapshots,omitempty"`
}

// HealthHandler reports liveness plus the reachability of both project
// stores. Either store may be absent depending on deployment; "disabled"
// is not a failure.
type HealthHandler struct {
	serviceName string
	version     string
	db          *pgxpool.Pool
	snapshots   *redis.Client
}

func NewHealthHandler(serviceName, version string, db *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
	}
}

// WithSnapshots adds the Redis snapshot store to the health report.
func (h *HealthHandler) WithSnapshots(client *redis.Client) *HealthHandler {
	h.snapshots = client
	return h
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if h.db != nil {
		if err := h.db.Ping(pingCtx); err != nil {
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
	}

	snapStatus := "disabled"
	if h.snapshots != nil {
		if err := h.snapshots.Ping(pingCtx).Err(); err != nil {
			snapStatus = "down"
		} else {
			snapStatus = "up"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
		Snapshots: snapStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
