package repository

import (
	"context"

	"github.com/spec-kit/compliance-service/internal/domain"
)

type notificationRepository struct {
	db DB
}

// NewNotificationRepository instantiates the pgx-backed repository.
func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient, item_id, title, message, type, priority, is_read)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		notification.Recipient,
		notification.ItemID,
		notification.Title,
		notification.Message,
		notification.Type,
		notification.Priority,
		notification.IsRead,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipient string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
        SELECT id, recipient, item_id, title, message, type, priority, created_at, is_read
        FROM notifications WHERE recipient=$1`
	if unreadOnly {
		query += ` AND is_read=FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, recipient, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.Recipient,
			&notification.ItemID,
			&notification.Title,
			&notification.Message,
			&notification.Type,
			&notification.Priority,
			&notification.CreatedAt,
			&notification.IsRead,
		); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipient string) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND recipient=$2`
	cmd, err := r.db.Exec(ctx, query, id, recipient)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
