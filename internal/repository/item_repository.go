package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/compliance-service/internal/domain"
)

type itemRepository struct {
	db DB
}

// NewItemRepository instantiates the pgx-backed repository.
func NewItemRepository(db DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	const query = `
        INSERT INTO items (title, description, module_type, status, priority, created_by, due_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		item.Title,
		item.Description,
		item.ModuleType,
		item.Status,
		item.Priority,
		item.CreatedBy,
		item.DueDate,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	const query = `
        UPDATE items SET title=$1, description=$2, status=$3, priority=$4, due_date=$5, completed_at=$6
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		item.Title,
		item.Description,
		item.Status,
		item.Priority,
		item.DueDate,
		item.CompletedAt,
		item.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	const query = `
        SELECT id, title, description, module_type, status, priority, created_by, created_at, due_date, completed_at
        FROM items WHERE id=$1`
	var item domain.Item
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.ModuleType,
		&item.Status,
		&item.Priority,
		&item.CreatedBy,
		&item.CreatedAt,
		&item.DueDate,
		&item.CompletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) ListWithFilter(ctx context.Context, filter ItemFilter) ([]domain.Item, error) {
	base := `SELECT id, title, description, module_type, status, priority, created_by, created_at, due_date, completed_at
             FROM items`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ModuleType != nil {
		args = append(args, *filter.ModuleType)
		clauses = append(clauses, fmt.Sprintf("module_type=$%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.ModuleType,
			&item.Status,
			&item.Priority,
			&item.CreatedBy,
			&item.CreatedAt,
			&item.DueDate,
			&item.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
