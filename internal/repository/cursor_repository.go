package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// postgresCursorRepository persists round-robin cursors in the store itself,
// so selection position survives process restarts.
type postgresCursorRepository struct {
	db DB
}

// NewPostgresCursorRepository builds the Postgres-backed cursor.
func NewPostgresCursorRepository(db DB) CursorRepository {
	return &postgresCursorRepository{db: db}
}

// Next is increment-and-read in a single statement. The upsert keeps the
// whole operation atomic on the store side, so concurrent callers always
// observe distinct positions.
func (r *postgresCursorRepository) Next(ctx context.Context, key string) (int64, error) {
	const query = `
        INSERT INTO strategy_cursors (key, position) VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET position = strategy_cursors.position + 1
        RETURNING position`
	var position int64
	if err := r.db.QueryRow(ctx, query, key).Scan(&position); err != nil {
		return 0, err
	}
	return position, nil
}

// redisCursorRepository keeps cursors in Redis via INCR, which is already an
// atomic increment-and-read.
type redisCursorRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisCursorRepository builds the Redis-backed cursor.
func NewRedisCursorRepository(client *redis.Client) CursorRepository {
	return &redisCursorRepository{client: client, prefix: "assignment:cursor:"}
}

func (r *redisCursorRepository) Next(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, r.prefix+key).Result()
}
