package domain

import "time"

// ReviewerRole enumerates directory roles relevant to the approval engine.
type ReviewerRole string

const (
	RoleReviewer        ReviewerRole = "reviewer"
	RoleApprovalManager ReviewerRole = "approval_manager"
	RoleDecisionMaker   ReviewerRole = "decision_maker"
	RoleAdmin           ReviewerRole = "admin"
)

// Reviewer models a directory identity eligible to receive assignments.
type Reviewer struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         ReviewerRole
	Department   string
	Expertise    []ModuleType
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
