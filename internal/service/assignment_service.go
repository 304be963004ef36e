package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/events"
	"github.com/spec-kit/compliance-service/internal/repository"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// AssignmentService orchestrates reviewer assignment: it validates the item,
// runs the configured strategy, writes assignments, transitions the item,
// records history, and queues notifications, all inside one per-item
// transaction.
type AssignmentService struct {
	store      repository.Store
	reviewers  repository.ReviewerRepository
	selector   *Selector
	dispatcher events.Dispatcher

	mu       sync.RWMutex
	settings domain.StrategySettings
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Store        repository.Store
	ReviewerRepo repository.ReviewerRepository
	Selector     *Selector
	Dispatcher   events.Dispatcher
}

// NewAssignmentService creates the service with the given initial settings.
func NewAssignmentService(deps AssignmentDependencies, settings domain.StrategySettings) *AssignmentService {
	if settings.Strategy == "" {
		settings = domain.DefaultStrategySettings()
	}
	return &AssignmentService{
		store:      deps.Store,
		reviewers:  deps.ReviewerRepo,
		selector:   deps.Selector,
		dispatcher: deps.Dispatcher,
		settings:   settings,
	}
}

// AssignResult reports the outcome of an assignment operation.
type AssignResult struct {
	ItemID    string
	Assignees []string
	Strategy  domain.StrategyType
	Automatic bool
}

// AutoAssign routes an item to reviewers chosen by the configured strategy.
// A second call on an already-assigned item is a no-op reported as
// ALREADY_ASSIGNED unless force is set; force adds a fresh round of
// assignments and records it as a reassignment.
func (s *AssignmentService) AutoAssign(ctx context.Context, itemID string, force bool) (*AssignResult, error) {
	settings := s.StrategySettings()

	pool, err := s.reviewers.ListEligible(ctx, settings.EligibleRoles, nil)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	var result *AssignResult
	err = s.store.WithItemTx(ctx, itemID, func(ctx context.Context, tx repository.Store) error {
		item, err := tx.Items().GetByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("item", map[string]any{"item_id": itemID})
			}
			return apperrors.NewStoreError(err)
		}

		// Idempotence guard, re-checked inside the transaction so two
		// concurrent calls cannot both pass it.
		existing, err := tx.Assignments().ListByItem(ctx, itemID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}
		if len(existing) > 0 && !force {
			return apperrors.NewAlreadyAssigned(map[string]any{
				"item_id":   itemID,
				"assignees": assigneeIDs(existing),
			})
		}

		assignees, err := s.selector.Select(ctx, tx, settings, item, pool)
		if err != nil {
			return err
		}
		if len(assignees) == 0 {
			return apperrors.NewNoEligibleReviewers(map[string]any{
				"item_id":  itemID,
				"strategy": string(settings.Strategy),
			})
		}

		action := domain.HistoryActionAssigned
		if len(existing) > 0 {
			action = domain.HistoryActionReassigned
		}
		if err := s.writeAssignment(ctx, tx, item, assignees, writeAssignmentInput{
			assignedBy:  domain.AssignedBySystem,
			performedBy: domain.ActorAutoAssignment,
			auto:        true,
			action:      action,
			notes:       fmt.Sprintf("strategy=%s assignees=%s", settings.Strategy, strings.Join(assignees, ",")),
		}); err != nil {
			return err
		}
		result = &AssignResult{ItemID: itemID, Assignees: assignees, Strategy: settings.Strategy, Automatic: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishAssigned(ctx, domain.ActorAutoAssignment, result)
	return result, nil
}

// ManualAssign routes an item to caller-supplied reviewers, bypassing the
// strategy. The actor must hold an assigner role.
func (s *AssignmentService) ManualAssign(ctx context.Context, actor *domain.Reviewer, itemID string, assigneeIDs []string, notes string) (*AssignResult, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("reviewer required")
	}
	settings := s.StrategySettings()
	if !hasRole(actor.Role, settings.AssignerRoles) {
		return nil, apperrors.NewForbidden("insufficient role for manual assignment")
	}
	assignees := dedupe(assigneeIDs)
	if len(assignees) == 0 {
		return nil, apperrors.NewValidationError("assignee_ids required", nil)
	}
	for _, assigneeID := range assignees {
		reviewer, err := s.reviewers.GetByID(ctx, assigneeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewNotFound("reviewer", map[string]any{"reviewer_id": assigneeID})
			}
			return nil, apperrors.NewStoreError(err)
		}
		if !reviewer.Active {
			return nil, apperrors.NewValidationError("assignee inactive", map[string]any{"reviewer_id": assigneeID})
		}
	}

	var result *AssignResult
	err := s.store.WithItemTx(ctx, itemID, func(ctx context.Context, tx repository.Store) error {
		item, err := tx.Items().GetByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("item", map[string]any{"item_id": itemID})
			}
			return apperrors.NewStoreError(err)
		}
		existing, err := tx.Assignments().ListByItem(ctx, itemID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}
		action := domain.HistoryActionAssigned
		if len(existing) > 0 {
			action = domain.HistoryActionReassigned
		}
		if err := s.writeAssignment(ctx, tx, item, assignees, writeAssignmentInput{
			assignedBy:  actor.ID,
			performedBy: domain.ActorManualAssignment,
			auto:        false,
			action:      action,
			notes:       notes,
		}); err != nil {
			return err
		}
		result = &AssignResult{ItemID: itemID, Assignees: assignees, Automatic: false}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishAssigned(ctx, actor.ID, result)
	return result, nil
}

type writeAssignmentInput struct {
	assignedBy  string
	performedBy string
	auto        bool
	action      domain.HistoryAction
	notes       string
}

// writeAssignment performs the atomic tail of both entry points: N
// assignment rows, the status transition when the item is still pending, one
// history entry, and one notification per assignee.
func (s *AssignmentService) writeAssignment(ctx context.Context, tx repository.Store, item *domain.Item, assignees []string, input writeAssignmentInput) error {
	for _, assigneeID := range assignees {
		assignment := &domain.Assignment{
			ItemID:         item.ID,
			AssignedTo:     assigneeID,
			AssignedBy:     input.assignedBy,
			Status:         domain.AssignmentStatusPending,
			IsAutoAssigned: input.auto,
			Deadline:       item.DueDate,
			Notes:          input.notes,
		}
		if err := tx.Assignments().Create(ctx, assignment); err != nil {
			return apperrors.NewStoreError(err)
		}
	}

	if item.Status == domain.ItemStatusPending {
		if err := advanceStatus(item, domain.ItemStatusInReview); err != nil {
			return err
		}
		if err := tx.Items().Update(ctx, item); err != nil {
			return apperrors.NewStoreError(err)
		}
	} else if item.Status != domain.ItemStatusInReview {
		return apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot assign an item in status %s", item.Status),
			map[string]any{"item_id": item.ID, "status": string(item.Status)},
		)
	}

	if err := tx.History().Create(ctx, &domain.HistoryEvent{
		ItemID:      item.ID,
		Action:      input.action,
		Status:      item.Status,
		PerformedBy: input.performedBy,
		Notes:       input.notes,
	}); err != nil {
		return apperrors.NewStoreError(err)
	}

	for _, assigneeID := range assignees {
		notification := &domain.Notification{
			Recipient: assigneeID,
			ItemID:    item.ID,
			Title:     "New review assignment",
			Message:   fmt.Sprintf("You have been assigned to review %q", item.Title),
			Type:      domain.NotificationTypeAssignment,
			Priority:  item.Priority,
		}
		if err := tx.Notifications().Create(ctx, notification); err != nil {
			return apperrors.NewStoreError(err)
		}
	}
	return nil
}

// StrategySettings returns a copy of the active settings.
func (s *AssignmentService) StrategySettings() domain.StrategySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// StrategySettingsUpdate carries a partial settings change; nil fields keep
// their current value.
type StrategySettingsUpdate struct {
	Strategy      *domain.StrategyType
	MaxAssignees  *int
	DepartmentMap map[domain.ModuleType][]string
	ExpertiseMap  map[domain.ModuleType][]string
	AssignerRoles []domain.ReviewerRole
	EligibleRoles []domain.ReviewerRole
}

// UpdateStrategySettings applies a partial update and returns the resulting
// settings. This is the only mutation path for engine configuration.
func (s *AssignmentService) UpdateStrategySettings(update StrategySettingsUpdate) (domain.StrategySettings, error) {
	if update.Strategy != nil && !update.Strategy.Valid() {
		return domain.StrategySettings{}, apperrors.NewValidationError("unknown strategy", map[string]any{"strategy": string(*update.Strategy)})
	}
	if update.MaxAssignees != nil && *update.MaxAssignees <= 0 {
		return domain.StrategySettings{}, apperrors.NewValidationError("max_assignees must be positive", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if update.Strategy != nil {
		s.settings.Strategy = *update.Strategy
	}
	if update.MaxAssignees != nil {
		s.settings.MaxAssignees = *update.MaxAssignees
	}
	if update.DepartmentMap != nil {
		s.settings.DepartmentMap = update.DepartmentMap
	}
	if update.ExpertiseMap != nil {
		s.settings.ExpertiseMap = update.ExpertiseMap
	}
	if update.AssignerRoles != nil {
		s.settings.AssignerRoles = update.AssignerRoles
	}
	if update.EligibleRoles != nil {
		s.settings.EligibleRoles = update.EligibleRoles
	}
	return s.settings.Clone(), nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, actorID string, result *AssignResult) {
	if s.dispatcher == nil || result == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventItemAssigned,
		ItemID:    result.ItemID,
		Actor:     events.Actor{ReviewerID: actorID},
		Timestamp: time.Now(),
		Payload: events.ItemAssignedPayload{
			Assignees: result.Assignees,
			Strategy:  result.Strategy,
			Automatic: result.Automatic,
		},
	})
}

func assigneeIDs(assignments []domain.Assignment) []string {
	ids := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.AssignedTo)
	}
	sort.Strings(ids)
	return ids
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
