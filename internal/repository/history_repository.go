package repository

import (
	"context"

	"github.com/spec-kit/compliance-service/internal/domain"
)

type historyEventRepository struct {
	db DB
}

// NewHistoryEventRepository instantiates the pgx-backed repository.
// The table is insert-only; there is no update or delete path.
func NewHistoryEventRepository(db DB) HistoryEventRepository {
	return &historyEventRepository{db: db}
}

func (r *historyEventRepository) Create(ctx context.Context, event *domain.HistoryEvent) error {
	const query = `
        INSERT INTO history_events (item_id, action, status, performed_by, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, timestamp`
	return r.db.QueryRow(ctx, query,
		event.ItemID,
		event.Action,
		event.Status,
		event.PerformedBy,
		event.Notes,
	).Scan(&event.ID, &event.Timestamp)
}

func (r *historyEventRepository) ListByItem(ctx context.Context, itemID string) ([]domain.HistoryEvent, error) {
	const query = `
        SELECT id, item_id, action, status, timestamp, performed_by, notes
        FROM history_events WHERE item_id=$1 ORDER BY timestamp ASC`
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEvent
	for rows.Next() {
		var event domain.HistoryEvent
		if err := rows.Scan(
			&event.ID,
			&event.ItemID,
			&event.Action,
			&event.Status,
			&event.Timestamp,
			&event.PerformedBy,
			&event.Notes,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
