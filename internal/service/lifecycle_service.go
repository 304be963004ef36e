package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/events"
	"github.com/spec-kit/compliance-service/internal/repository"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// allowedTransitions is the item status state machine. Terminal states have
// no outgoing edges.
var allowedTransitions = map[domain.ItemStatus][]domain.ItemStatus{
	domain.ItemStatusPending:  {domain.ItemStatusInReview, domain.ItemStatusCancelled},
	domain.ItemStatusInReview: {domain.ItemStatusApproved, domain.ItemStatusRejected, domain.ItemStatusCancelled},
}

// approverRoles may move an item to approved or rejected.
var approverRoles = []domain.ReviewerRole{domain.RoleAdmin, domain.RoleApprovalManager, domain.RoleDecisionMaker}

func isValidTransition(from, to domain.ItemStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// advanceStatus validates and applies a transition on the item in place,
// stamping CompletedAt when the new status is terminal.
func advanceStatus(item *domain.Item, newStatus domain.ItemStatus) error {
	if !isValidTransition(item.Status, newStatus) {
		return apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot transition from %s to %s", item.Status, newStatus),
			map[string]any{"item_id": item.ID, "from": string(item.Status), "to": string(newStatus)},
		)
	}
	item.Status = newStatus
	if newStatus.IsTerminal() {
		now := time.Now().UTC()
		item.CompletedAt = &now
	}
	return nil
}

// LifecycleService owns the item status state machine.
type LifecycleService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

// LifecycleDependencies bundles collaborators.
type LifecycleDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
}

// NewLifecycleService creates the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
	}
}

// TransitionStatus moves an item to newStatus on behalf of actor. The item
// update, the single history entry, and the reviewer notifications are
// written in one transaction; an invalid transition writes nothing.
func (s *LifecycleService) TransitionStatus(ctx context.Context, actor *domain.Reviewer, itemID string, newStatus domain.ItemStatus, notes string) (*domain.Item, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("reviewer required")
	}
	switch newStatus {
	case domain.ItemStatusApproved, domain.ItemStatusRejected:
		if !hasRole(actor.Role, approverRoles) {
			return nil, apperrors.NewForbidden("insufficient role for approval decision")
		}
	case domain.ItemStatusCancelled:
		// creator check needs the item; done inside the transaction
	default:
		return nil, apperrors.NewValidationError("unsupported target status", map[string]any{"status": string(newStatus)})
	}

	var updated *domain.Item
	var oldStatus domain.ItemStatus
	err := s.store.WithItemTx(ctx, itemID, func(ctx context.Context, tx repository.Store) error {
		item, err := tx.Items().GetByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("item", map[string]any{"item_id": itemID})
			}
			return apperrors.NewStoreError(err)
		}
		if newStatus == domain.ItemStatusCancelled && actor.Role != domain.RoleAdmin && item.CreatedBy != actor.ID {
			return apperrors.NewForbidden("only the creator or an admin may cancel")
		}
		oldStatus = item.Status
		if err := advanceStatus(item, newStatus); err != nil {
			return err
		}
		if err := tx.Items().Update(ctx, item); err != nil {
			return apperrors.NewStoreError(err)
		}
		if err := tx.History().Create(ctx, &domain.HistoryEvent{
			ItemID:      item.ID,
			Action:      domain.HistoryActionStatusChanged,
			Status:      item.Status,
			PerformedBy: actor.ID,
			Notes:       notes,
		}); err != nil {
			return apperrors.NewStoreError(err)
		}
		if err := notifyAssignedReviewers(ctx, tx, item, notes); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, actor.ID, updated, oldStatus, notes)
	return updated, nil
}

// notifyAssignedReviewers queues a status-change notification for every
// reviewer currently assigned to the item, inside the caller's transaction.
func notifyAssignedReviewers(ctx context.Context, tx repository.Store, item *domain.Item, notes string) error {
	assignments, err := tx.Assignments().ListByItem(ctx, item.ID)
	if err != nil {
		return apperrors.NewStoreError(err)
	}
	seen := make(map[string]struct{}, len(assignments))
	for _, assignment := range assignments {
		if _, dup := seen[assignment.AssignedTo]; dup {
			continue
		}
		seen[assignment.AssignedTo] = struct{}{}
		notification := &domain.Notification{
			Recipient: assignment.AssignedTo,
			ItemID:    item.ID,
			Title:     fmt.Sprintf("Item %s", item.Status),
			Message:   fmt.Sprintf("%q is now %s", item.Title, item.Status),
			Type:      domain.NotificationTypeStatusChange,
			Priority:  item.Priority,
		}
		if err := tx.Notifications().Create(ctx, notification); err != nil {
			return apperrors.NewStoreError(err)
		}
	}
	return nil
}

func (s *LifecycleService) publishStatusChange(ctx context.Context, actorID string, item *domain.Item, oldStatus domain.ItemStatus, notes string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventItemStatusChanged,
		ItemID:    item.ID,
		Actor:     events.Actor{ReviewerID: actorID},
		Timestamp: time.Now(),
		Payload: events.ItemStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: item.Status,
			Notes:     notes,
		},
	})
}

func hasRole(role domain.ReviewerRole, allowed []domain.ReviewerRole) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}
