package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/compliance-service/internal/domain"
)

// ErrNotFound is returned by repositories when a record does not exist,
// regardless of the backing store.
var ErrNotFound = errors.New("record not found")

// ErrNestedTx is returned when WithItemTx is called on a store that is
// already transaction-bound.
var ErrNestedTx = errors.New("nested item transactions are not supported")

// ItemFilter captures item listing parameters.
type ItemFilter struct {
	ModuleType  *domain.ModuleType
	Statuses    []domain.ItemStatus
	Priorities  []domain.ItemPriority
	CreatedBy   *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// ItemRepository encapsulates item persistence. Items are append-then-update
// only; there is no delete.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	ListWithFilter(ctx context.Context, filter ItemFilter) ([]domain.Item, error)
}

// AssignmentRepository encapsulates assignment persistence.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	ListByItem(ctx context.Context, itemID string) ([]domain.Assignment, error)
	ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]domain.Assignment, error)
	// CountPendingByReviewer returns the number of pending assignments per
	// reviewer. Reviewers with no pending assignments are present with count 0.
	CountPendingByReviewer(ctx context.Context, reviewerIDs []string) (map[string]int, error)
}

// HistoryEventRepository stores append-only audit entries.
type HistoryEventRepository interface {
	Create(ctx context.Context, event *domain.HistoryEvent) error
	ListByItem(ctx context.Context, itemID string) ([]domain.HistoryEvent, error)
}

// NotificationRepository stores reviewer notification records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipient string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipient string) error
}

// ReviewerRepository is the directory lookup consumed by the engine.
type ReviewerRepository interface {
	Create(ctx context.Context, reviewer *domain.Reviewer) error
	GetByID(ctx context.Context, id string) (*domain.Reviewer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error)
	// ListEligible returns active reviewers holding any of the given roles,
	// optionally restricted to the given departments.
	ListEligible(ctx context.Context, roles []domain.ReviewerRole, departments []string) ([]domain.Reviewer, error)
}

// CursorRepository provides the atomic counter behind round-robin selection.
// Next increments the named cursor and returns the new value as one
// operation, so two concurrent callers never observe the same position.
type CursorRepository interface {
	Next(ctx context.Context, key string) (int64, error)
}

// Store aggregates the record-kind repositories and the per-item
// transactional boundary the engine requires.
type Store interface {
	Items() ItemRepository
	Assignments() AssignmentRepository
	History() HistoryEventRepository
	Notifications() NotificationRepository

	// WithItemTx runs fn inside a transaction scoped to one item. All writes
	// made through the Store passed to fn are applied atomically; any error
	// from fn discards them. Two concurrent calls for the same item are
	// serialized, calls for different items are independent.
	WithItemTx(ctx context.Context, itemID string, fn func(ctx context.Context, tx Store) error) error
}
