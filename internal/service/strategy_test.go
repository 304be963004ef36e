package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/repository/memory"
)

func reviewerPool(ids ...string) []domain.Reviewer {
	pool := make([]domain.Reviewer, 0, len(ids))
	for _, id := range ids {
		pool = append(pool, domain.Reviewer{ID: id, Role: domain.RoleReviewer, Active: true})
	}
	return pool
}

func TestSelectRoundRobin_VisitsEveryReviewerOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	selector := NewSelector(memory.NewCursor())

	settings := domain.DefaultStrategySettings()
	settings.Strategy = domain.StrategyRoundRobin
	settings.MaxAssignees = 1
	item := &domain.Item{ID: "item-1", ModuleType: domain.ModuleDocument}
	pool := reviewerPool("r-b", "r-a", "r-c")

	seen := make(map[string]int)
	for i := 0; i < 3; i++ {
		selected, err := selector.Select(ctx, store, settings, item, pool)
		require.NoError(t, err)
		require.Len(t, selected, 1)
		seen[selected[0]]++
	}
	require.Equal(t, map[string]int{"r-a": 1, "r-b": 1, "r-c": 1}, seen)

	// The fourth selection wraps around to the first reviewer in ID order.
	selected, err := selector.Select(ctx, store, settings, item, pool)
	require.NoError(t, err)
	require.Equal(t, []string{"r-a"}, selected)
}

func TestSelectRoundRobin_AdvancesCursorPerSlot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	selector := NewSelector(memory.NewCursor())

	settings := domain.DefaultStrategySettings()
	settings.Strategy = domain.StrategyRoundRobin
	settings.MaxAssignees = 2
	item := &domain.Item{ID: "item-1", ModuleType: domain.ModuleDocument}
	pool := reviewerPool("r-1", "r-2", "r-3")

	first, err := selector.Select(ctx, store, settings, item, pool)
	require.NoError(t, err)
	require.Equal(t, []string{"r-1", "r-2"}, first)

	second, err := selector.Select(ctx, store, settings, item, pool)
	require.NoError(t, err)
	require.Equal(t, []string{"r-3", "r-1"}, second)
}

func TestSelectWorkloadBalanced_PicksLeastLoaded(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	selector := NewSelector(memory.NewCursor())

	// Pending workloads: r-1 has 3, r-2 has 1, r-3 has 2.
	loads := map[string]int{"r-1": 3, "r-2": 1, "r-3": 2}
	for reviewerID, count := range loads {
		for i := 0; i < count; i++ {
			require.NoError(t, store.Assignments().Create(ctx, &domain.Assignment{
				ItemID:     "seed",
				AssignedTo: reviewerID,
				Status:     domain.AssignmentStatusPending,
			}))
		}
	}

	settings := domain.DefaultStrategySettings()
	settings.Strategy = domain.StrategyWorkloadBalanced
	settings.MaxAssignees = 2
	item := &domain.Item{ID: "item-1", ModuleType: domain.ModuleDocument}

	selected, err := selector.Select(ctx, store, settings, item, reviewerPool("r-1", "r-2", "r-3"))
	require.NoError(t, err)
	require.Equal(t, []string{"r-2", "r-3"}, selected)
}

func TestSelectWorkloadBalanced_BreaksTiesByID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	selector := NewSelector(memory.NewCursor())

	settings := domain.DefaultStrategySettings()
	settings.Strategy = domain.StrategyWorkloadBalanced
	settings.MaxAssignees = 1
	item := &domain.Item{ID: "item-1", ModuleType: domain.ModuleDocument}

	selected, err := selector.Select(ctx, store, settings, item, reviewerPool("r-z", "r-a"))
	require.NoError(t, err)
	require.Equal(t, []string{"r-a"}, selected)
}

func TestSelectDepartmentBased_FiltersByMappedDepartments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	selector := NewSelector(memory.NewCursor())

	settings := domain.DefaultStrategySettings()
	settings.Strategy = domain.StrategyDepartmentBased
	settings.MaxAssignees = 5
	settings.DepartmentMap = map[domain.ModuleType][]string{
		domain.ModuleRiskAssessment: {"risk"},
	}
	item := &domain.Item{ID: "item-1", ModuleType: domain.ModuleRiskAssessment}
	pool := []domain.Reviewer{
		{ID: "r-risk", Department: "risk", Active: true},
		{ID: "r-compliance", Department: "compliance", Active: true},
	}

	selected, err := selector.Select(ctx, store, settings, item, pool)
	require.NoError(t, err)
	require.Equal(t, []string{"r-risk"}, selected)
}

func TestSelectDepartmentBased_UnmappedModuleSelectsNobody(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	selector := NewSelector(memory.NewCursor())

	settings := domain.DefaultStrategySettings()
	settings.Strategy = domain.StrategyDepartmentBased
	settings.DepartmentMap = map[domain.ModuleType][]string{}
	item := &domain.Item{ID: "item-1", ModuleType: domain.ModuleTraining}

	selected, err := selector.Select(ctx, store, settings, item, reviewerPool("r-1", "r-2"))
	require.NoError(t, err)
	require.Empty(t, selected)
}

func TestSelectExpertiseBased_UsesAllowlist(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	selector := NewSelector(memory.NewCursor())

	settings := domain.DefaultStrategySettings()
	settings.Strategy = domain.StrategyExpertiseBased
	settings.MaxAssignees = 5
	settings.ExpertiseMap = map[domain.ModuleType][]string{
		domain.ModuleDocument: {"r-2", "r-3"},
	}
	item := &domain.Item{ID: "item-1", ModuleType: domain.ModuleDocument}

	selected, err := selector.Select(ctx, store, settings, item, reviewerPool("r-1", "r-2", "r-3"))
	require.NoError(t, err)
	require.Equal(t, []string{"r-2", "r-3"}, selected)
}

func TestSelectExpertiseBased_EmptyAllowlistFallsBackToDepartments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	selector := NewSelector(memory.NewCursor())

	settings := domain.DefaultStrategySettings()
	settings.Strategy = domain.StrategyExpertiseBased
	settings.ExpertiseMap = map[domain.ModuleType][]string{}
	settings.DepartmentMap = map[domain.ModuleType][]string{
		domain.ModuleDocument: {"compliance"},
	}
	item := &domain.Item{ID: "item-1", ModuleType: domain.ModuleDocument}
	pool := []domain.Reviewer{
		{ID: "r-compliance", Department: "compliance", Active: true},
		{ID: "r-risk", Department: "risk", Active: true},
	}

	selected, err := selector.Select(ctx, store, settings, item, pool)
	require.NoError(t, err)
	require.Equal(t, []string{"r-compliance"}, selected)
}

func TestSelect_UnknownStrategyFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	selector := NewSelector(memory.NewCursor())

	settings := domain.DefaultStrategySettings()
	settings.Strategy = domain.StrategyType("chaos")
	item := &domain.Item{ID: "item-1"}

	_, err := selector.Select(ctx, store, settings, item, reviewerPool("r-1"))
	require.Error(t, err)
}

func TestSelectionCap_NeverExceedsCandidates(t *testing.T) {
	settings := domain.DefaultStrategySettings()
	settings.MaxAssignees = 4
	require.Equal(t, 2, selectionCap(settings, 2))

	settings.MaxAssignees = 0
	require.Equal(t, 2, selectionCap(settings, 10))
}
