package domain

import "time"

// ItemStatus enumerates lifecycle states for compliance items.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusInReview  ItemStatus = "in_review"
	ItemStatusApproved  ItemStatus = "approved"
	ItemStatusRejected  ItemStatus = "rejected"
	ItemStatusCancelled ItemStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from the status.
func (s ItemStatus) IsTerminal() bool {
	switch s {
	case ItemStatusApproved, ItemStatusRejected, ItemStatusCancelled:
		return true
	}
	return false
}

// ModuleType identifies which compliance module an item belongs to.
type ModuleType string

const (
	ModuleRiskAssessment     ModuleType = "risk_assessment"
	ModuleSystemRegistration ModuleType = "system_registration"
	ModuleDocument           ModuleType = "document"
	ModuleTraining           ModuleType = "training"
)

// ItemPriority enumerates review urgency.
type ItemPriority string

const (
	ItemPriorityLow    ItemPriority = "low"
	ItemPriorityMedium ItemPriority = "medium"
	ItemPriorityHigh   ItemPriority = "high"
)

// Item is the aggregate for a unit of work awaiting approval.
// Items are never deleted; they are only transitioned to a terminal status.
type Item struct {
	ID          string
	Title       string
	Description string
	ModuleType  ModuleType
	Status      ItemStatus
	Priority    ItemPriority
	CreatedBy   string
	CreatedAt   time.Time
	DueDate     *time.Time
	CompletedAt *time.Time
}
