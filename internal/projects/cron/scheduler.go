package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/melodyforge/composer-backend/internal/projects/service"
)

// deadlineWindow is how far ahead the sweep looks for expiring reviews.
const deadlineWindow = 48 * time.Hour

// Scheduler runs the nightly deadline sweep. The sweep is read-only: it
// surfaces projects whose review window is closing so an admin can extend
// or chase, and never mutates status or history itself.
type Scheduler struct {
	projects *service.ProjectService
	c        *cron.Cron
}

// NewScheduler creates a new Scheduler
func NewScheduler(projects *service.ProjectService) *Scheduler {
	return &Scheduler{projects: projects}
}

// Start initializes cron tasks
func (s *Scheduler) Start() {
	s.c = cron.New(cron.WithSeconds())

	// (12:00 AM)
	_, err := s.c.AddFunc("0 0 0 * * *", func() {
		s.sweepDeadlines()
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Cron scheduler started (deadline sweep nightly at 12:00AM)")
	s.c.Start()
}

// Stop halts the scheduler; a sweep already running finishes.
func (s *Scheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}

func (s *Scheduler) sweepDeadlines() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expiring, err := s.projects.ExpiringProjects(ctx, deadlineWindow)
	if err != nil {
		log.Printf("Deadline sweep failed: %v", err)
		return
	}

	for _, p := range expiring {
		log.Printf("Deadline sweep: project %s (%s) expires %s, status=%s",
			p.ID, p.ClientName, p.ExpirationDate.Format(time.RFC3339), p.Status)
	}
	log.Printf("Deadline sweep completed: %d project(s) expiring within %s", len(expiring), deadlineWindow)
}
