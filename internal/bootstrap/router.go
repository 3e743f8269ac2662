package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/melodyforge/composer-backend/internal/api/http"
	"github.com/melodyforge/composer-backend/internal/api/http/middleware"
	"github.com/melodyforge/composer-backend/internal/audio"
	"github.com/melodyforge/composer-backend/internal/events"
	projecthttp "github.com/melodyforge/composer-backend/internal/projects/http"
	"github.com/melodyforge/composer-backend/internal/projects/service"
	reviewhttp "github.com/melodyforge/composer-backend/internal/review/http"
	"github.com/melodyforge/composer-backend/internal/syncer"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	CallbackSecret string
	AudioHostURL   string
	DB             *pgxpool.Pool
	Snapshots      *redis.Client
	Projects       *service.ProjectService
	Bus            *events.Bus
}

// BuildRouter wires the HTTP surfaces: health, the admin project API, and
// the review-surface callback endpoints. The sync coordinator is
// registered on the bus before any route can publish.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB).
		WithSnapshots(dep.Snapshots)
	healthHandler.RegisterRoutes(r)

	coordinator := syncer.NewCoordinator(dep.Projects)
	coordinator.Register(dep.Bus)

	api := r.Group("/api/v1")

	var audioHost audio.Host
	if dep.AudioHostURL != "" {
		audioHost = audio.NewClient(dep.AudioHostURL)
	}

	projectsGroup := api.Group("/projects")
	projecthttp.New(dep.Projects, audioHost).Register(projectsGroup)

	reviewGroup := api.Group("/review")
	reviewhttp.NewHandler(dep.Bus, dep.CallbackSecret).Register(reviewGroup)

	return r
}
