package domain

import "time"

// AssignmentStatus enumerates the reviewer-side task states.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

// AssignedBySystem marks assignments created by the automatic strategy path.
const AssignedBySystem = "system"

// Assignment is one reviewer's task on one item.
type Assignment struct {
	ID             string
	ItemID         string
	AssignedTo     string
	AssignedBy     string
	Status         AssignmentStatus
	IsAutoAssigned bool
	AssignedAt     time.Time
	Deadline       *time.Time
	CompletedAt    *time.Time
	Notes          string
}
