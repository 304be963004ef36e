package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/repository"
)

// roundRobinCursorKey names the persisted cursor shared by all round-robin
// selections. Persisting it keeps rotation position across restarts.
const roundRobinCursorKey = "round_robin"

// Selector picks reviewers for an item according to the configured strategy.
// Selection is side-effect free except for the round-robin cursor advance.
type Selector struct {
	cursor repository.CursorRepository
}

// NewSelector constructs a selector over the given cursor store.
func NewSelector(cursor repository.CursorRepository) *Selector {
	return &Selector{cursor: cursor}
}

// Select returns the reviewer IDs to assign, capped at settings.MaxAssignees.
// An empty result means no eligible reviewers; it is not an error. The store
// is the transactional scope of the caller, so workload reads happen inside
// the same transaction as the writes they inform.
func (s *Selector) Select(ctx context.Context, store repository.Store, settings domain.StrategySettings, item *domain.Item, pool []domain.Reviewer) ([]string, error) {
	switch settings.Strategy {
	case domain.StrategyRoundRobin:
		return s.selectRoundRobin(ctx, settings, pool)
	case domain.StrategyWorkloadBalanced:
		return selectWorkloadBalanced(ctx, store, settings, pool)
	case domain.StrategyDepartmentBased:
		return selectDepartmentBased(settings, item, pool), nil
	case domain.StrategyExpertiseBased:
		return selectExpertiseBased(settings, item, pool), nil
	}
	return nil, fmt.Errorf("unknown assignment strategy %q", settings.Strategy)
}

// selectRoundRobin walks the candidate list in stable ID order, advancing the
// persisted cursor once per selected slot. Each advance is an atomic
// increment-and-read, so concurrent selections never reuse a position.
func (s *Selector) selectRoundRobin(ctx context.Context, settings domain.StrategySettings, pool []domain.Reviewer) ([]string, error) {
	ids := sortedIDs(pool)
	if len(ids) == 0 {
		return nil, nil
	}
	count := selectionCap(settings, len(ids))

	selected := make([]string, 0, count)
	for i := 0; i < count; i++ {
		position, err := s.cursor.Next(ctx, roundRobinCursorKey)
		if err != nil {
			return nil, err
		}
		selected = append(selected, ids[int((position-1)%int64(len(ids)))])
	}
	return selected, nil
}

// selectWorkloadBalanced picks the candidates with the fewest pending
// assignments, breaking ties by ID. The workload read is stale the moment it
// completes; bursts may transiently over-assign one reviewer, which is the
// accepted trade-off over cross-request locking.
func selectWorkloadBalanced(ctx context.Context, store repository.Store, settings domain.StrategySettings, pool []domain.Reviewer) ([]string, error) {
	ids := sortedIDs(pool)
	if len(ids) == 0 {
		return nil, nil
	}
	workloads, err := store.Assignments().CountPendingByReviewer(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if workloads[ids[i]] == workloads[ids[j]] {
			return ids[i] < ids[j]
		}
		return workloads[ids[i]] < workloads[ids[j]]
	})
	return ids[:selectionCap(settings, len(ids))], nil
}

// selectDepartmentBased restricts the pool to the departments mapped from the
// item's module type. A module type with no mapping selects nobody; that is
// an explicit outcome, not a fallback.
func selectDepartmentBased(settings domain.StrategySettings, item *domain.Item, pool []domain.Reviewer) []string {
	departments := settings.DepartmentMap[item.ModuleType]
	if len(departments) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(departments))
	for _, department := range departments {
		allowed[department] = struct{}{}
	}
	var ids []string
	for _, reviewer := range pool {
		if _, ok := allowed[reviewer.Department]; ok {
			ids = append(ids, reviewer.ID)
		}
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return nil
	}
	return ids[:selectionCap(settings, len(ids))]
}

// selectExpertiseBased restricts the pool to the per-module expert allowlist.
// An empty allowlist delegates to the department policy; this is the only
// cross-strategy fallback.
func selectExpertiseBased(settings domain.StrategySettings, item *domain.Item, pool []domain.Reviewer) []string {
	experts := settings.ExpertiseMap[item.ModuleType]
	if len(experts) == 0 {
		return selectDepartmentBased(settings, item, pool)
	}
	allowed := make(map[string]struct{}, len(experts))
	for _, id := range experts {
		allowed[id] = struct{}{}
	}
	var ids []string
	for _, reviewer := range pool {
		if _, ok := allowed[reviewer.ID]; ok {
			ids = append(ids, reviewer.ID)
		}
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return nil
	}
	return ids[:selectionCap(settings, len(ids))]
}

func selectionCap(settings domain.StrategySettings, candidates int) int {
	limit := settings.MaxAssignees
	if limit <= 0 {
		limit = 2
	}
	if candidates < limit {
		return candidates
	}
	return limit
}

func sortedIDs(pool []domain.Reviewer) []string {
	ids := make([]string, 0, len(pool))
	for _, reviewer := range pool {
		ids = append(ids, reviewer.ID)
	}
	sort.Strings(ids)
	return ids
}
