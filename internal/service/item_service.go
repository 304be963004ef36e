package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/events"
	"github.com/spec-kit/compliance-service/internal/repository"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// ItemService coordinates the submission surface around the engine: creating
// items and reading items, their history, and their assignments.
type ItemService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

// ItemDependencies bundles collaborators.
type ItemDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
}

// ItemCreateInput describes an item submission.
type ItemCreateInput struct {
	Title       string
	Description string
	ModuleType  domain.ModuleType
	Priority    domain.ItemPriority
	DueDate     *time.Time
}

// NewItemService constructs the service.
func NewItemService(deps ItemDependencies) *ItemService {
	return &ItemService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
	}
}

// CreateItem records a new item in pending status with a created audit entry.
func (s *ItemService) CreateItem(ctx context.Context, creatorID string, input ItemCreateInput) (*domain.Item, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	switch input.ModuleType {
	case domain.ModuleRiskAssessment, domain.ModuleSystemRegistration, domain.ModuleDocument, domain.ModuleTraining:
	default:
		return nil, apperrors.NewValidationError("unknown module type", map[string]any{"module_type": string(input.ModuleType)})
	}

	item := &domain.Item{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		ModuleType:  input.ModuleType,
		Status:      domain.ItemStatusPending,
		Priority:    input.Priority,
		CreatedBy:   creatorID,
		DueDate:     input.DueDate,
	}
	if item.Priority == "" {
		item.Priority = domain.ItemPriorityMedium
	}

	if err := s.store.Items().Create(ctx, item); err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	if err := s.store.History().Create(ctx, &domain.HistoryEvent{
		ItemID:      item.ID,
		Action:      domain.HistoryActionCreated,
		Status:      item.Status,
		PerformedBy: creatorID,
	}); err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventItemCreated,
			ItemID:    item.ID,
			Actor:     events.Actor{ReviewerID: creatorID},
			Timestamp: time.Now(),
			Payload: events.ItemCreatedPayload{
				ModuleType: item.ModuleType,
				Priority:   item.Priority,
				Title:      item.Title,
			},
		})
	}
	return item, nil
}

// GetItem fetches one item.
func (s *ItemService) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("item", map[string]any{"item_id": itemID})
		}
		return nil, apperrors.NewStoreError(err)
	}
	return item, nil
}

// ListItems returns items matching the filter.
func (s *ItemService) ListItems(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, error) {
	items, err := s.store.Items().ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return items, nil
}

// ListHistory returns the audit trail for an item, oldest first.
func (s *ItemService) ListHistory(ctx context.Context, itemID string) ([]domain.HistoryEvent, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	history, err := s.store.History().ListByItem(ctx, itemID)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return history, nil
}

// ListItemAssignments returns the assignments on an item.
func (s *ItemService) ListItemAssignments(ctx context.Context, itemID string) ([]domain.Assignment, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	assignments, err := s.store.Assignments().ListByItem(ctx, itemID)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return assignments, nil
}

// ListReviewerAssignments returns a reviewer's own assignments.
func (s *ItemService) ListReviewerAssignments(ctx context.Context, reviewerID string, limit, offset int) ([]domain.Assignment, error) {
	assignments, err := s.store.Assignments().ListByReviewer(ctx, reviewerID, limit, offset)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return assignments, nil
}
