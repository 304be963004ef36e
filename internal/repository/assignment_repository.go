package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/compliance-service/internal/domain"
)

type assignmentRepository struct {
	db DB
}

// NewAssignmentRepository instantiates the pgx-backed repository.
func NewAssignmentRepository(db DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (item_id, assigned_to, assigned_by, status, is_auto_assigned, deadline, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, assigned_at`
	return r.db.QueryRow(ctx, query,
		assignment.ItemID,
		assignment.AssignedTo,
		assignment.AssignedBy,
		assignment.Status,
		assignment.IsAutoAssigned,
		assignment.Deadline,
		assignment.Notes,
	).Scan(&assignment.ID, &assignment.AssignedAt)
}

func (r *assignmentRepository) ListByItem(ctx context.Context, itemID string) ([]domain.Assignment, error) {
	const query = `
        SELECT id, item_id, assigned_to, assigned_by, status, is_auto_assigned, assigned_at, deadline, completed_at, notes
        FROM assignments WHERE item_id=$1 ORDER BY assigned_at ASC`
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepository) ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]domain.Assignment, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, item_id, assigned_to, assigned_by, status, is_auto_assigned, assigned_at, deadline, completed_at, notes
        FROM assignments WHERE assigned_to=$1 ORDER BY assigned_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, reviewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepository) CountPendingByReviewer(ctx context.Context, reviewerIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(reviewerIDs))
	for _, id := range reviewerIDs {
		counts[id] = 0
	}
	if len(reviewerIDs) == 0 {
		return counts, nil
	}
	const query = `
        SELECT assigned_to, COUNT(*) FROM assignments
        WHERE status=$1 AND assigned_to = ANY($2)
        GROUP BY assigned_to`
	rows, err := r.db.Query(ctx, query, domain.AssignmentStatusPending, reviewerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var reviewerID string
		var count int
		if err := rows.Scan(&reviewerID, &count); err != nil {
			return nil, err
		}
		counts[reviewerID] = count
	}
	return counts, rows.Err()
}

func scanAssignments(rows pgx.Rows) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.ItemID,
			&assignment.AssignedTo,
			&assignment.AssignedBy,
			&assignment.Status,
			&assignment.IsAutoAssigned,
			&assignment.AssignedAt,
			&assignment.Deadline,
			&assignment.CompletedAt,
			&assignment.Notes,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}
