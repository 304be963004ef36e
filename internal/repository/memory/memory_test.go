package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/repository"
)

func TestWithItemTx_CommitAppliesBufferedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	item := &domain.Item{Title: "Vendor onboarding", ModuleType: domain.ModuleDocument, Status: domain.ItemStatusPending}
	require.NoError(t, store.Items().Create(ctx, item))

	err := store.WithItemTx(ctx, item.ID, func(ctx context.Context, tx repository.Store) error {
		current, err := tx.Items().GetByID(ctx, item.ID)
		if err != nil {
			return err
		}
		current.Status = domain.ItemStatusInReview
		if err := tx.Items().Update(ctx, current); err != nil {
			return err
		}
		return tx.History().Create(ctx, &domain.HistoryEvent{
			ItemID: item.ID,
			Action: domain.HistoryActionStatusChanged,
			Status: current.Status,
		})
	})
	require.NoError(t, err)

	updated, err := store.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ItemStatusInReview, updated.Status)

	history, err := store.History().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestWithItemTx_ErrorDiscardsBufferedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	item := &domain.Item{Title: "Vendor onboarding", ModuleType: domain.ModuleDocument, Status: domain.ItemStatusPending}
	require.NoError(t, store.Items().Create(ctx, item))

	boom := errors.New("boom")
	err := store.WithItemTx(ctx, item.ID, func(ctx context.Context, tx repository.Store) error {
		current, err := tx.Items().GetByID(ctx, item.ID)
		if err != nil {
			return err
		}
		current.Status = domain.ItemStatusInReview
		if err := tx.Items().Update(ctx, current); err != nil {
			return err
		}
		if err := tx.Assignments().Create(ctx, &domain.Assignment{ItemID: item.ID, AssignedTo: "r-1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	unchanged, err := store.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ItemStatusPending, unchanged.Status)

	assignments, err := store.Assignments().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Empty(t, assignments)
}

func TestWithItemTx_NestedTransactionFails(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.WithItemTx(ctx, "item-1", func(ctx context.Context, tx repository.Store) error {
		return tx.WithItemTx(ctx, "item-1", func(ctx context.Context, tx repository.Store) error {
			return nil
		})
	})
	require.ErrorIs(t, err, repository.ErrNestedTx)
}

func TestCountPendingByReviewer_OnlyCountsPending(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Assignments().Create(ctx, &domain.Assignment{ItemID: "i-1", AssignedTo: "r-1", Status: domain.AssignmentStatusPending}))
	require.NoError(t, store.Assignments().Create(ctx, &domain.Assignment{ItemID: "i-2", AssignedTo: "r-1", Status: domain.AssignmentStatusCompleted}))
	require.NoError(t, store.Assignments().Create(ctx, &domain.Assignment{ItemID: "i-3", AssignedTo: "r-2", Status: domain.AssignmentStatusPending}))

	counts, err := store.Assignments().CountPendingByReviewer(ctx, []string{"r-1", "r-2", "r-3"})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"r-1": 1, "r-2": 1, "r-3": 0}, counts)
}

func TestMarkRead_ScopedToRecipient(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	notification := &domain.Notification{Recipient: "r-1", ItemID: "i-1", Title: "hello"}
	require.NoError(t, store.Notifications().Create(ctx, notification))

	err := store.Notifications().MarkRead(ctx, notification.ID, "r-2")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.Notifications().MarkRead(ctx, notification.ID, "r-1"))

	inbox, err := store.Notifications().ListByRecipient(ctx, "r-1", true, 10, 0)
	require.NoError(t, err)
	require.Empty(t, inbox)
}

func TestListEligible_FiltersInactiveAndRoles(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Reviewers().Create(ctx, &domain.Reviewer{ID: "r-1", Role: domain.RoleReviewer, Department: "risk", Active: true}))
	require.NoError(t, store.Reviewers().Create(ctx, &domain.Reviewer{ID: "r-2", Role: domain.RoleReviewer, Department: "risk", Active: false}))
	require.NoError(t, store.Reviewers().Create(ctx, &domain.Reviewer{ID: "r-3", Role: domain.RoleAdmin, Department: "risk", Active: true}))

	eligible, err := store.Reviewers().ListEligible(ctx, []domain.ReviewerRole{domain.RoleReviewer}, nil)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, "r-1", eligible[0].ID)

	eligible, err = store.Reviewers().ListEligible(ctx, nil, []string{"compliance"})
	require.NoError(t, err)
	require.Empty(t, eligible)
}

func TestCursor_IncrementsPerKey(t *testing.T) {
	ctx := context.Background()
	cursor := NewCursor()

	first, err := cursor.Next(ctx, "round_robin")
	require.NoError(t, err)
	require.EqualValues(t, 1, first)

	second, err := cursor.Next(ctx, "round_robin")
	require.NoError(t, err)
	require.EqualValues(t, 2, second)

	other, err := cursor.Next(ctx, "other")
	require.NoError(t, err)
	require.EqualValues(t, 1, other)
}
