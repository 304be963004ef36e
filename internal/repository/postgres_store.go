package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the query subset shared by pgxpool.Pool and pgx.Tx, letting the same
// repository code run against the pool or inside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	pool *pgxpool.Pool
	db   DB
}

// NewPostgresStore builds the Store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool, db: pool}
}

func (s *postgresStore) Items() ItemRepository {
	return &itemRepository{db: s.db}
}

func (s *postgresStore) Assignments() AssignmentRepository {
	return &assignmentRepository{db: s.db}
}

func (s *postgresStore) History() HistoryEventRepository {
	return &historyEventRepository{db: s.db}
}

func (s *postgresStore) Notifications() NotificationRepository {
	return &notificationRepository{db: s.db}
}

// WithItemTx opens a transaction and takes a row lock on the item, so
// concurrent assignment attempts on one item serialize while other items
// proceed untouched.
func (s *postgresStore) WithItemTx(ctx context.Context, itemID string, fn func(ctx context.Context, tx Store) error) error {
	if s.pool == nil {
		return ErrNestedTx
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT id FROM items WHERE id=$1 FOR UPDATE`, itemID); err != nil {
		return err
	}
	if err := fn(ctx, &postgresStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
