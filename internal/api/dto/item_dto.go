package dto

import (
	"time"

	"github.com/spec-kit/compliance-service/internal/domain"
)

// CreateItemRequest payload.
type CreateItemRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ModuleType  domain.ModuleType   `json:"module_type"`
	Priority    domain.ItemPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

// TransitionStatusRequest payload for approve/reject/cancel.
type TransitionStatusRequest struct {
	Status domain.ItemStatus `json:"status"`
	Notes  string            `json:"notes"`
}

// ItemResponse is the item representation returned by the API.
type ItemResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ModuleType  domain.ModuleType   `json:"module_type"`
	Status      domain.ItemStatus   `json:"status"`
	Priority    domain.ItemPriority `json:"priority"`
	CreatedBy   string              `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// HistoryEventResponse is one audit trail entry.
type HistoryEventResponse struct {
	ID          string               `json:"id"`
	Action      domain.HistoryAction `json:"action"`
	Status      domain.ItemStatus    `json:"status"`
	Timestamp   time.Time            `json:"timestamp"`
	PerformedBy string               `json:"performed_by"`
	Notes       string               `json:"notes,omitempty"`
}
