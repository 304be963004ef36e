package dto

import (
	"time"

	"github.com/spec-kit/compliance-service/internal/domain"
)

// AutoAssignRequest payload.
type AutoAssignRequest struct {
	ForceAssign bool `json:"force_assign"`
}

// ManualAssignRequest payload.
type ManualAssignRequest struct {
	AssigneeIDs []string `json:"assignee_ids"`
	Notes       string   `json:"notes"`
}

// AssignResponse reports the outcome of an assignment call.
type AssignResponse struct {
	ItemID    string              `json:"item_id"`
	Assignees []string            `json:"assignees"`
	Strategy  domain.StrategyType `json:"strategy,omitempty"`
	Automatic bool                `json:"automatic"`
}

// AssignmentResponse is one assignment record.
type AssignmentResponse struct {
	ID             string                  `json:"id"`
	ItemID         string                  `json:"item_id"`
	AssignedTo     string                  `json:"assigned_to"`
	AssignedBy     string                  `json:"assigned_by"`
	Status         domain.AssignmentStatus `json:"status"`
	IsAutoAssigned bool                    `json:"is_auto_assigned"`
	AssignedAt     time.Time               `json:"assigned_at"`
	Deadline       *time.Time              `json:"deadline,omitempty"`
	CompletedAt    *time.Time              `json:"completed_at,omitempty"`
	Notes          string                  `json:"notes,omitempty"`
}

// StrategySettingsResponse mirrors the engine configuration.
type StrategySettingsResponse struct {
	Strategy      domain.StrategyType            `json:"strategy"`
	MaxAssignees  int                            `json:"max_assignees"`
	DepartmentMap map[domain.ModuleType][]string `json:"department_map"`
	ExpertiseMap  map[domain.ModuleType][]string `json:"expertise_map"`
	AssignerRoles []domain.ReviewerRole          `json:"assigner_roles"`
	EligibleRoles []domain.ReviewerRole          `json:"eligible_roles"`
}

// UpdateStrategySettingsRequest carries a partial settings change.
type UpdateStrategySettingsRequest struct {
	Strategy      *domain.StrategyType           `json:"strategy"`
	MaxAssignees  *int                           `json:"max_assignees"`
	DepartmentMap map[domain.ModuleType][]string `json:"department_map"`
	ExpertiseMap  map[domain.ModuleType][]string `json:"expertise_map"`
	AssignerRoles []domain.ReviewerRole          `json:"assigner_roles"`
	EligibleRoles []domain.ReviewerRole          `json:"eligible_roles"`
}
