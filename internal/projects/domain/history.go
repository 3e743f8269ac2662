package domain

import (
	"time"

	"github.com/google/uuid"
)

// History action classifiers. All call sites go through these constants so
// audit rows stay greppable.
const (
	ActionCreated           = "project created"
	ActionApproved          = "approved"
	ActionFeedbackReceived  = "feedback received"
	ActionReturnedToWaiting = "returned to waiting"
	ActionVersionAdded      = "version added"
	ActionVersionRemoved    = "version removed"
	ActionDeadlineExtended  = "deadline extended"
)

// HistoryEntry is an immutable audit record of one state-changing action.
// Entries are only ever appended; nothing edits or removes them.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewHistoryEntry builds an entry with a fresh id and timestamp. It does
// not store anything; appending is the service's job.
func NewHistoryEntry(action string, data map[string]any) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.New().String(),
		Action:    action,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
