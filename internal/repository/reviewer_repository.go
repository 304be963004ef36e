package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/compliance-service/internal/domain"
)

type reviewerRepository struct {
	db DB
}

// NewReviewerRepository instantiates the pgx-backed directory lookup.
func NewReviewerRepository(db DB) ReviewerRepository {
	return &reviewerRepository{db: db}
}

func (r *reviewerRepository) Create(ctx context.Context, reviewer *domain.Reviewer) error {
	const query = `
        INSERT INTO reviewers (name, email, password_hash, role, department, expertise, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		reviewer.Name,
		reviewer.Email,
		reviewer.PasswordHash,
		reviewer.Role,
		reviewer.Department,
		moduleTypesToStrings(reviewer.Expertise),
		reviewer.Active,
	).Scan(&reviewer.ID, &reviewer.CreatedAt, &reviewer.UpdatedAt)
}

func (r *reviewerRepository) GetByID(ctx context.Context, id string) (*domain.Reviewer, error) {
	const query = `
        SELECT id, name, email, password_hash, role, department, expertise, active, created_at, updated_at
        FROM reviewers WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *reviewerRepository) GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error) {
	const query = `
        SELECT id, name, email, password_hash, role, department, expertise, active, created_at, updated_at
        FROM reviewers WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *reviewerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Reviewer, error) {
	var reviewer domain.Reviewer
	var expertise []string
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&reviewer.ID,
		&reviewer.Name,
		&reviewer.Email,
		&reviewer.PasswordHash,
		&reviewer.Role,
		&reviewer.Department,
		&expertise,
		&reviewer.Active,
		&reviewer.CreatedAt,
		&reviewer.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	reviewer.Expertise = stringsToModuleTypes(expertise)
	return &reviewer, nil
}

func (r *reviewerRepository) ListEligible(ctx context.Context, roles []domain.ReviewerRole, departments []string) ([]domain.Reviewer, error) {
	base := `SELECT id, name, email, password_hash, role, department, expertise, active, created_at, updated_at
             FROM reviewers`
	clauses := []string{"active=TRUE"}
	args := []any{}

	if len(roles) > 0 {
		placeholders := make([]string, len(roles))
		for i, role := range roles {
			args = append(args, role)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("role IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(departments) > 0 {
		args = append(args, departments)
		clauses = append(clauses, fmt.Sprintf("department = ANY($%d)", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY id ASC`, base, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reviewer
	for rows.Next() {
		var reviewer domain.Reviewer
		var expertise []string
		if err := rows.Scan(
			&reviewer.ID,
			&reviewer.Name,
			&reviewer.Email,
			&reviewer.PasswordHash,
			&reviewer.Role,
			&reviewer.Department,
			&expertise,
			&reviewer.Active,
			&reviewer.CreatedAt,
			&reviewer.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reviewer.Expertise = stringsToModuleTypes(expertise)
		result = append(result, reviewer)
	}
	return result, rows.Err()
}

func moduleTypesToStrings(types []domain.ModuleType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

func stringsToModuleTypes(values []string) []domain.ModuleType {
	out := make([]domain.ModuleType, 0, len(values))
	for _, v := range values {
		out = append(out, domain.ModuleType(v))
	}
	return out
}
