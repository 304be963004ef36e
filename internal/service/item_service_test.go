package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/events"
	"github.com/spec-kit/compliance-service/internal/repository"
	"github.com/spec-kit/compliance-service/internal/repository/memory"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

func newItemFixture(t *testing.T) (*memory.Store, *ItemService) {
	t.Helper()
	store := memory.NewStore()
	service := NewItemService(ItemDependencies{
		Store:      store,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	return store, service
}

func TestCreateItem_DefaultsAndAudit(t *testing.T) {
	ctx := context.Background()
	store, service := newItemFixture(t)

	item, err := service.CreateItem(ctx, "creator-1", ItemCreateInput{
		Title:      "  Access review ",
		ModuleType: domain.ModuleSystemRegistration,
	})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Equal(t, "Access review", item.Title)
	require.Equal(t, domain.ItemStatusPending, item.Status)
	require.Equal(t, domain.ItemPriorityMedium, item.Priority)
	require.Equal(t, "creator-1", item.CreatedBy)

	history, err := store.History().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, domain.HistoryActionCreated, history[0].Action)
	require.Equal(t, domain.ItemStatusPending, history[0].Status)
	require.Equal(t, "creator-1", history[0].PerformedBy)
}

func TestCreateItem_Validation(t *testing.T) {
	ctx := context.Background()
	_, service := newItemFixture(t)

	_, err := service.CreateItem(ctx, "creator-1", ItemCreateInput{
		Title:      "   ",
		ModuleType: domain.ModuleDocument,
	})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeValidationFailed, apperrors.ToDomainError(err).Code)

	_, err = service.CreateItem(ctx, "creator-1", ItemCreateInput{
		Title:      "Budget review",
		ModuleType: domain.ModuleType("finance"),
	})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeValidationFailed, apperrors.ToDomainError(err).Code)
}

func TestGetItem_NotFound(t *testing.T) {
	_, service := newItemFixture(t)

	_, err := service.GetItem(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
}

func TestListItems_FilterByStatusAndModule(t *testing.T) {
	ctx := context.Background()
	_, service := newItemFixture(t)

	doc, err := service.CreateItem(ctx, "creator-1", ItemCreateInput{Title: "Policy doc", ModuleType: domain.ModuleDocument})
	require.NoError(t, err)
	_, err = service.CreateItem(ctx, "creator-2", ItemCreateInput{Title: "Risk sweep", ModuleType: domain.ModuleRiskAssessment})
	require.NoError(t, err)

	moduleType := domain.ModuleDocument
	items, err := service.ListItems(ctx, repository.ItemFilter{ModuleType: &moduleType})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, doc.ID, items[0].ID)

	items, err = service.ListItems(ctx, repository.ItemFilter{Statuses: []domain.ItemStatus{domain.ItemStatusPending}})
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestListHistory_RequiresExistingItem(t *testing.T) {
	_, service := newItemFixture(t)

	_, err := service.ListHistory(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
}
