// Package syncer keeps project delivery status consistent with events
// raised by the client-facing review surface. All translation from event
// payloads to project mutations lives here so the status state machine has
// exactly one home.
package syncer

import (
	"context"
	"log"

	"github.com/melodyforge/composer-backend/internal/events"
	"github.com/melodyforge/composer-backend/internal/projects/service"
)

// Coordinator subscribes to the status event bus and applies each event as
// a ProjectService mutation plus a history entry. Handlers never return
// errors to the bus: a bad payload, a missing project, or a failed durable
// write is logged and dropped so one subscriber cannot take the bus down
// for the rest. The read-mutate-write itself happens inside the service,
// under its lock, so concurrent deliveries cannot drop each other's
// history entries.
//
// Handlers are not idempotent. The bus performs no deduplication and the
// event shapes carry no dedup key, so a duplicate publish produces a
// duplicate history entry. Known limitation, pinned by tests.
type Coordinator struct {
	projects *service.ProjectService
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(projects *service.ProjectService) *Coordinator {
	return &Coordinator{projects: projects}
}

// Register subscribes the coordinator's handlers and returns a function
// that removes them all. Events published while nothing is registered are
// lost; callers should register before exposing the review surface.
func (c *Coordinator) Register(bus *events.Bus) (stop func()) {
	unsubs := []func(){
		bus.Subscribe(events.TypePreviewApproved, c.handlePreviewApproved),
		bus.Subscribe(events.TypeFeedbackReceived, c.handleFeedbackReceived),
		bus.Subscribe(events.TypeProjectCreated, c.handleProjectCreated),
		bus.Subscribe(events.TypeProjectUpdated, c.handleProjectUpdated),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (c *Coordinator) handlePreviewApproved(payload any) {
	ev, ok := payload.(events.PreviewApproved)
	if !ok || ev.ProjectID == "" {
		log.Printf("[sync] discarding malformed preview_approved payload: %+v", payload)
		return
	}

	_, err := c.projects.ApplyApproval(context.Background(), ev.ProjectID, ev.VersionID, ev.Comments)
	if err != nil {
		log.Printf("[sync] preview_approved: project %s: %v", ev.ProjectID, err)
	}
}

func (c *Coordinator) handleFeedbackReceived(payload any) {
	ev, ok := payload.(events.FeedbackReceived)
	if !ok || ev.ProjectID == "" {
		log.Printf("[sync] discarding malformed feedback_received payload: %+v", payload)
		return
	}

	_, err := c.projects.ApplyFeedback(context.Background(), ev.ProjectID, ev.Message, ev.VersionID)
	if err != nil {
		log.Printf("[sync] feedback_received: project %s: %v", ev.ProjectID, err)
	}
}

func (c *Coordinator) handleProjectCreated(payload any) {
	ev, ok := payload.(events.ProjectCreated)
	if !ok || ev.ProjectID == "" {
		log.Printf("[sync] discarding malformed project_created payload: %+v", payload)
		return
	}
	// informational only
	log.Printf("[sync] review surface reports project %s created", ev.ProjectID)
}

func (c *Coordinator) handleProjectUpdated(payload any) {
	ev, ok := payload.(events.ProjectUpdated)
	if !ok || ev.ProjectID == "" {
		log.Printf("[sync] discarding malformed project_updated payload: %+v", payload)
		return
	}

	if err := c.projects.TouchActivity(context.Background(), ev.ProjectID); err != nil {
		log.Printf("[sync] project_updated: project %s: %v", ev.ProjectID, err)
	}
}
