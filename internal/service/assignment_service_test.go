package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/events"
	"github.com/spec-kit/compliance-service/internal/repository/memory"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

type engineFixture struct {
	store   *memory.Store
	service *AssignmentService
}

func newEngineFixture(t *testing.T, settings domain.StrategySettings) *engineFixture {
	t.Helper()
	store := memory.NewStore()
	service := NewAssignmentService(AssignmentDependencies{
		Store:        store,
		ReviewerRepo: store.Reviewers(),
		Selector:     NewSelector(memory.NewCursor()),
		Dispatcher:   events.NewInMemoryDispatcher(),
	}, settings)
	return &engineFixture{store: store, service: service}
}

func seedReviewer(t *testing.T, store *memory.Store, id string, role domain.ReviewerRole, department string) {
	t.Helper()
	require.NoError(t, store.Reviewers().Create(context.Background(), &domain.Reviewer{
		ID:         id,
		Name:       id,
		Email:      id + "@example.com",
		Role:       role,
		Department: department,
		Active:     true,
	}))
}

func seedItem(t *testing.T, store *memory.Store, moduleType domain.ModuleType) *domain.Item {
	t.Helper()
	item := &domain.Item{
		Title:      "Quarterly risk review",
		ModuleType: moduleType,
		Status:     domain.ItemStatusPending,
		Priority:   domain.ItemPriorityMedium,
		CreatedBy:  "creator-1",
	}
	require.NoError(t, store.Items().Create(context.Background(), item))
	return item
}

func seedPendingAssignments(t *testing.T, store *memory.Store, reviewerID string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		require.NoError(t, store.Assignments().Create(context.Background(), &domain.Assignment{
			ItemID:     "backlog",
			AssignedTo: reviewerID,
			Status:     domain.AssignmentStatusPending,
		}))
	}
}

func TestAutoAssign_WorkloadBalancedEndToEnd(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(t, domain.DefaultStrategySettings())
	seedReviewer(t, fx.store, "r-1", domain.RoleReviewer, "compliance")
	seedReviewer(t, fx.store, "r-2", domain.RoleReviewer, "compliance")
	seedReviewer(t, fx.store, "r-3", domain.RoleReviewer, "compliance")
	seedPendingAssignments(t, fx.store, "r-2", 2)
	seedPendingAssignments(t, fx.store, "r-3", 1)
	item := seedItem(t, fx.store, domain.ModuleDocument)

	result, err := fx.service.AutoAssign(ctx, item.ID, false)
	require.NoError(t, err)
	require.Equal(t, []string{"r-1", "r-3"}, result.Assignees)
	require.True(t, result.Automatic)
	require.Equal(t, domain.StrategyWorkloadBalanced, result.Strategy)

	updated, err := fx.store.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ItemStatusInReview, updated.Status)

	assignments, err := fx.store.Assignments().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	for _, assignment := range assignments {
		require.Equal(t, domain.AssignedBySystem, assignment.AssignedBy)
		require.Equal(t, domain.AssignmentStatusPending, assignment.Status)
		require.True(t, assignment.IsAutoAssigned)
	}

	history, err := fx.store.History().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, domain.HistoryActionAssigned, history[0].Action)
	require.Equal(t, domain.ItemStatusInReview, history[0].Status)
	require.Equal(t, domain.ActorAutoAssignment, history[0].PerformedBy)

	for _, reviewerID := range result.Assignees {
		inbox, err := fx.store.Notifications().ListByRecipient(ctx, reviewerID, false, 10, 0)
		require.NoError(t, err)
		require.Len(t, inbox, 1)
		require.Equal(t, domain.NotificationTypeAssignment, inbox[0].Type)
		require.Equal(t, item.ID, inbox[0].ItemID)
	}
}

func TestAutoAssign_SecondCallIsNoOp(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(t, domain.DefaultStrategySettings())
	seedReviewer(t, fx.store, "r-1", domain.RoleReviewer, "compliance")
	item := seedItem(t, fx.store, domain.ModuleDocument)

	_, err := fx.service.AutoAssign(ctx, item.ID, false)
	require.NoError(t, err)

	_, err = fx.service.AutoAssign(ctx, item.ID, false)
	require.True(t, apperrors.IsAlreadyAssigned(err))

	assignments, err := fx.store.Assignments().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)

	history, err := fx.store.History().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestAutoAssign_ForceAddsReassignment(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(t, domain.DefaultStrategySettings())
	seedReviewer(t, fx.store, "r-1", domain.RoleReviewer, "compliance")
	seedReviewer(t, fx.store, "r-2", domain.RoleReviewer, "compliance")
	item := seedItem(t, fx.store, domain.ModuleDocument)

	_, err := fx.service.AutoAssign(ctx, item.ID, false)
	require.NoError(t, err)

	result, err := fx.service.AutoAssign(ctx, item.ID, true)
	require.NoError(t, err)
	require.NotEmpty(t, result.Assignees)

	history, err := fx.store.History().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, domain.HistoryActionReassigned, history[1].Action)
}

func TestAutoAssign_NoEligibleReviewersWritesNothing(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(t, domain.DefaultStrategySettings())
	item := seedItem(t, fx.store, domain.ModuleDocument)

	_, err := fx.service.AutoAssign(ctx, item.ID, false)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeNoEligibleReviewers, domainErr.Code)

	// The failed attempt must leave the item untouched.
	updated, err := fx.store.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ItemStatusPending, updated.Status)

	assignments, err := fx.store.Assignments().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Empty(t, assignments)

	history, err := fx.store.History().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestAutoAssign_UnknownItem(t *testing.T) {
	fx := newEngineFixture(t, domain.DefaultStrategySettings())
	seedReviewer(t, fx.store, "r-1", domain.RoleReviewer, "compliance")

	_, err := fx.service.AutoAssign(context.Background(), "missing", false)
	require.Error(t, err)
	require.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
}

func TestAutoAssign_ConcurrentCallsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(t, domain.DefaultStrategySettings())
	seedReviewer(t, fx.store, "r-1", domain.RoleReviewer, "compliance")
	seedReviewer(t, fx.store, "r-2", domain.RoleReviewer, "compliance")
	seedReviewer(t, fx.store, "r-3", domain.RoleReviewer, "compliance")
	item := seedItem(t, fx.store, domain.ModuleDocument)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = fx.service.AutoAssign(ctx, item.ID, false)
		}(i)
	}
	wg.Wait()

	var wins, noOps int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperrors.IsAlreadyAssigned(err):
			noOps++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, callers-1, noOps)

	assignments, err := fx.store.Assignments().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	history, err := fx.store.History().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestManualAssign_RequiresAssignerRole(t *testing.T) {
	fx := newEngineFixture(t, domain.DefaultStrategySettings())
	seedReviewer(t, fx.store, "r-1", domain.RoleReviewer, "compliance")
	item := seedItem(t, fx.store, domain.ModuleDocument)

	actor := &domain.Reviewer{ID: "r-1", Role: domain.RoleReviewer, Active: true}
	_, err := fx.service.ManualAssign(context.Background(), actor, item.ID, []string{"r-1"}, "")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeForbidden, apperrors.ToDomainError(err).Code)
}

func TestManualAssign_DeduplicatesAndAssigns(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(t, domain.DefaultStrategySettings())
	seedReviewer(t, fx.store, "manager", domain.RoleApprovalManager, "compliance")
	seedReviewer(t, fx.store, "r-1", domain.RoleReviewer, "compliance")
	item := seedItem(t, fx.store, domain.ModuleDocument)

	actor := &domain.Reviewer{ID: "manager", Role: domain.RoleApprovalManager, Active: true}
	result, err := fx.service.ManualAssign(ctx, actor, item.ID, []string{"r-1", "r-1", " "}, "please review")
	require.NoError(t, err)
	require.Equal(t, []string{"r-1"}, result.Assignees)
	require.False(t, result.Automatic)

	assignments, err := fx.store.Assignments().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, "manager", assignments[0].AssignedBy)
	require.False(t, assignments[0].IsAutoAssigned)

	history, err := fx.store.History().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, domain.ActorManualAssignment, history[0].PerformedBy)
}

func TestManualAssign_RejectsInactiveAssignee(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(t, domain.DefaultStrategySettings())
	require.NoError(t, fx.store.Reviewers().Create(ctx, &domain.Reviewer{
		ID:     "r-halt",
		Email:  "halt@example.com",
		Role:   domain.RoleReviewer,
		Active: false,
	}))
	item := seedItem(t, fx.store, domain.ModuleDocument)

	actor := &domain.Reviewer{ID: "admin", Role: domain.RoleAdmin, Active: true}
	_, err := fx.service.ManualAssign(ctx, actor, item.ID, []string{"r-halt"}, "")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeValidationFailed, apperrors.ToDomainError(err).Code)
}

func TestUpdateStrategySettings_PartialUpdate(t *testing.T) {
	fx := newEngineFixture(t, domain.DefaultStrategySettings())

	strategy := domain.StrategyRoundRobin
	updated, err := fx.service.UpdateStrategySettings(StrategySettingsUpdate{Strategy: &strategy})
	require.NoError(t, err)
	require.Equal(t, domain.StrategyRoundRobin, updated.Strategy)
	require.Equal(t, 2, updated.MaxAssignees)

	limit := 3
	updated, err = fx.service.UpdateStrategySettings(StrategySettingsUpdate{MaxAssignees: &limit})
	require.NoError(t, err)
	require.Equal(t, domain.StrategyRoundRobin, updated.Strategy)
	require.Equal(t, 3, updated.MaxAssignees)
}

func TestUpdateStrategySettings_RejectsInvalidValues(t *testing.T) {
	fx := newEngineFixture(t, domain.DefaultStrategySettings())

	bogus := domain.StrategyType("coin_flip")
	_, err := fx.service.UpdateStrategySettings(StrategySettingsUpdate{Strategy: &bogus})
	require.Error(t, err)

	zero := 0
	_, err = fx.service.UpdateStrategySettings(StrategySettingsUpdate{MaxAssignees: &zero})
	require.Error(t, err)

	// Bad input must not clobber the active settings.
	require.Equal(t, domain.StrategyWorkloadBalanced, fx.service.StrategySettings().Strategy)
}
