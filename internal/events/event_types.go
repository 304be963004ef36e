package events

import (
	"time"

	"github.com/spec-kit/compliance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventItemCreated       EventType = "item_created"
	EventItemAssigned      EventType = "item_assigned"
	EventItemStatusChanged EventType = "item_status_changed"
)

// Actor encapsulates actor metadata for an event. ReviewerID carries the
// engine sentinels for automatic actions.
type Actor struct {
	ReviewerID string `json:"reviewer_id"`
}

// Event represents a domain event emitted by services after their
// transaction commits.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ItemID    string      `json:"item_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ItemCreatedPayload payload.
type ItemCreatedPayload struct {
	ModuleType domain.ModuleType   `json:"module_type"`
	Priority   domain.ItemPriority `json:"priority"`
	Title      string              `json:"title"`
}

// ItemAssignedPayload payload.
type ItemAssignedPayload struct {
	Assignees []string            `json:"assignees"`
	Strategy  domain.StrategyType `json:"strategy,omitempty"`
	Automatic bool                `json:"automatic"`
}

// ItemStatusChangedPayload payload.
type ItemStatusChangedPayload struct {
	OldStatus domain.ItemStatus `json:"old_status"`
	NewStatus domain.ItemStatus `json:"new_status"`
	Notes     string            `json:"notes,omitempty"`
}
