package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/melodyforge/composer-backend/config"
	"github.com/melodyforge/composer-backend/internal/bootstrap"
	"github.com/melodyforge/composer-backend/internal/events"
	cronjob "github.com/melodyforge/composer-backend/internal/projects/cron"
	"github.com/melodyforge/composer-backend/internal/projects/repository"
	"github.com/melodyforge/composer-backend/internal/projects/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)
	ctx := context.Background()

	var (
		pool      *pgxpool.Pool
		snapshots *redis.Client
		repo      repository.ProjectRepository
	)

	// Prefer the relational store when configured; fall back to the Redis
	// snapshot store, then to process memory for local hacking.
	switch {
	case cfg.Database.DSN != "":
		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{
			DSN:      cfg.Database.DSN,
			MaxConns: int32(cfg.Database.MaxConns),
		})
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		repo = repository.NewPostgresRepository(pool)
		log.Println("project store: postgres")
	case cfg.Redis.Addr != "":
		snapshots, err = bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer snapshots.Close()
		repo = repository.NewSnapshotRepository(snapshots)
		log.Println("project store: redis snapshots")
	default:
		repo = repository.NewMemoryRepository()
		log.Println("project store: in-memory (volatile, development only)")
	}

	projects := service.NewProjectService(repo)
	bus := events.NewBus()

	scheduler := cronjob.NewScheduler(projects)
	scheduler.Start()
	defer scheduler.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "composer-backend",
		Version:        cfg.App.Version,
		CallbackSecret: cfg.Review.CallbackSecret,
		AudioHostURL:   cfg.Audio.HostURL,
		DB:             pool,
		Snapshots:      snapshots,
		Projects:       projects,
		Bus:            bus,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
