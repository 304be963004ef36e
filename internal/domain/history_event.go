package domain

import "time"

// HistoryAction captures what happened in an audit entry.
type HistoryAction string

const (
	HistoryActionCreated       HistoryAction = "created"
	HistoryActionAssigned      HistoryAction = "assigned"
	HistoryActionStatusChanged HistoryAction = "status_changed"
	HistoryActionReassigned    HistoryAction = "reassigned"
)

// Actor sentinels recorded on history entries written by the engine itself.
const (
	ActorAutoAssignment   = "auto_assignment"
	ActorManualAssignment = "manual_assignment"
)

// HistoryEvent is an immutable audit trail entry. Entries are append-only,
// ordered by timestamp, and never mutated or deleted.
type HistoryEvent struct {
	ID          string
	ItemID      string
	Action      HistoryAction
	Status      ItemStatus
	Timestamp   time.Time
	PerformedBy string
	Notes       string
}
