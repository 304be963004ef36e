// Package memory provides the in-memory reference implementation of the
// store adapter. It backs the test suite and lets the service run without a
// database. Semantics mirror the Postgres store: per-item transactional
// writes are all-or-nothing, and operations on different items never block
// each other.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/repository"
)

// Store holds all record kinds behind one mutex. Item-scoped transactions
// additionally serialize on a per-item lock.
type Store struct {
	mu            sync.RWMutex
	items         map[string]domain.Item
	assignments   []domain.Assignment
	history       []domain.HistoryEvent
	notifications []domain.Notification
	reviewers     map[string]domain.Reviewer

	lockMu    sync.Mutex
	itemLocks map[string]*sync.Mutex
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		items:     make(map[string]domain.Item),
		reviewers: make(map[string]domain.Reviewer),
		itemLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) Items() repository.ItemRepository {
	return &itemRepo{store: s}
}

func (s *Store) Assignments() repository.AssignmentRepository {
	return &assignmentRepo{store: s}
}

func (s *Store) History() repository.HistoryEventRepository {
	return &historyRepo{store: s}
}

func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepo{store: s}
}

// Reviewers returns the directory lookup backed by this store.
func (s *Store) Reviewers() repository.ReviewerRepository {
	return &reviewerRepo{store: s}
}

func (s *Store) itemLock(itemID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.itemLocks[itemID]
	if !ok {
		lock = &sync.Mutex{}
		s.itemLocks[itemID] = lock
	}
	return lock
}

// WithItemTx serializes on the item's lock and buffers all writes made
// through the transactional store. Writes are applied only when fn returns
// nil; any error discards them. Reads inside the transaction observe
// committed state, which is stable for the locked item.
func (s *Store) WithItemTx(ctx context.Context, itemID string, fn func(ctx context.Context, tx repository.Store) error) error {
	lock := s.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	tx := &txStore{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, apply := range tx.pending {
		apply(s)
	}
	return nil
}

// txStore buffers writes until commit. Repositories bound to it read the
// committed state and append apply-closures for mutations.
type txStore struct {
	store   *Store
	pending []func(*Store)
}

func (t *txStore) Items() repository.ItemRepository {
	return &itemRepo{store: t.store, tx: t}
}

func (t *txStore) Assignments() repository.AssignmentRepository {
	return &assignmentRepo{store: t.store, tx: t}
}

func (t *txStore) History() repository.HistoryEventRepository {
	return &historyRepo{store: t.store, tx: t}
}

func (t *txStore) Notifications() repository.NotificationRepository {
	return &notificationRepo{store: t.store, tx: t}
}

func (t *txStore) WithItemTx(ctx context.Context, itemID string, fn func(ctx context.Context, tx repository.Store) error) error {
	return repository.ErrNestedTx
}

type itemRepo struct {
	store *Store
	tx    *txStore
}

func (r *itemRepo) Create(ctx context.Context, item *domain.Item) error {
	item.ID = uuid.NewString()
	item.CreatedAt = time.Now().UTC()
	record := *item
	r.write(func(s *Store) {
		s.items[record.ID] = record
	})
	return nil
}

func (r *itemRepo) Update(ctx context.Context, item *domain.Item) error {
	r.store.mu.RLock()
	_, exists := r.store.items[item.ID]
	r.store.mu.RUnlock()
	if !exists {
		return repository.ErrNotFound
	}
	record := *item
	r.write(func(s *Store) {
		s.items[record.ID] = record
	})
	return nil
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	item, ok := r.store.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (r *itemRepo) ListWithFilter(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []domain.Item
	for _, item := range r.store.items {
		if filter.ModuleType != nil && item.ModuleType != *filter.ModuleType {
			continue
		}
		if filter.CreatedBy != nil && item.CreatedBy != *filter.CreatedBy {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, item.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, item.Priority) {
			continue
		}
		if filter.CreatedFrom != nil && item.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && item.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *itemRepo) write(apply func(*Store)) {
	if r.tx != nil {
		r.tx.pending = append(r.tx.pending, apply)
		return
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	apply(r.store)
}

type assignmentRepo struct {
	store *Store
	tx    *txStore
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *domain.Assignment) error {
	assignment.ID = uuid.NewString()
	assignment.AssignedAt = time.Now().UTC()
	record := *assignment
	r.write(func(s *Store) {
		s.assignments = append(s.assignments, record)
	})
	return nil
}

func (r *assignmentRepo) ListByItem(ctx context.Context, itemID string) ([]domain.Assignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []domain.Assignment
	for _, assignment := range r.store.assignments {
		if assignment.ItemID == itemID {
			result = append(result, assignment)
		}
	}
	return result, nil
}

func (r *assignmentRepo) ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]domain.Assignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []domain.Assignment
	for _, assignment := range r.store.assignments {
		if assignment.AssignedTo == reviewerID {
			result = append(result, assignment)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssignedAt.After(result[j].AssignedAt)
	})
	return paginate(result, limit, offset), nil
}

func (r *assignmentRepo) CountPendingByReviewer(ctx context.Context, reviewerIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(reviewerIDs))
	for _, id := range reviewerIDs {
		counts[id] = 0
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, assignment := range r.store.assignments {
		if assignment.Status != domain.AssignmentStatusPending {
			continue
		}
		if _, tracked := counts[assignment.AssignedTo]; tracked {
			counts[assignment.AssignedTo]++
		}
	}
	return counts, nil
}

func (r *assignmentRepo) write(apply func(*Store)) {
	if r.tx != nil {
		r.tx.pending = append(r.tx.pending, apply)
		return
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	apply(r.store)
}

type historyRepo struct {
	store *Store
	tx    *txStore
}

func (r *historyRepo) Create(ctx context.Context, event *domain.HistoryEvent) error {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	record := *event
	r.write(func(s *Store) {
		s.history = append(s.history, record)
	})
	return nil
}

func (r *historyRepo) ListByItem(ctx context.Context, itemID string) ([]domain.HistoryEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []domain.HistoryEvent
	for _, event := range r.store.history {
		if event.ItemID == itemID {
			result = append(result, event)
		}
	}
	return result, nil
}

func (r *historyRepo) write(apply func(*Store)) {
	if r.tx != nil {
		r.tx.pending = append(r.tx.pending, apply)
		return
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	apply(r.store)
}

type notificationRepo struct {
	store *Store
	tx    *txStore
}

func (r *notificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now().UTC()
	record := *notification
	r.write(func(s *Store) {
		s.notifications = append(s.notifications, record)
	})
	return nil
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, recipient string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []domain.Notification
	for _, notification := range r.store.notifications {
		if notification.Recipient != recipient {
			continue
		}
		if unreadOnly && notification.IsRead {
			continue
		}
		result = append(result, notification)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, limit, offset), nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, recipient string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.notifications {
		if r.store.notifications[i].ID == id && r.store.notifications[i].Recipient == recipient {
			r.store.notifications[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *notificationRepo) write(apply func(*Store)) {
	if r.tx != nil {
		r.tx.pending = append(r.tx.pending, apply)
		return
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	apply(r.store)
}

type reviewerRepo struct {
	store *Store
}

func (r *reviewerRepo) Create(ctx context.Context, reviewer *domain.Reviewer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if reviewer.ID == "" {
		reviewer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	reviewer.CreatedAt = now
	reviewer.UpdatedAt = now
	r.store.reviewers[reviewer.ID] = *reviewer
	return nil
}

func (r *reviewerRepo) GetByID(ctx context.Context, id string) (*domain.Reviewer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	reviewer, ok := r.store.reviewers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &reviewer, nil
}

func (r *reviewerRepo) GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, reviewer := range r.store.reviewers {
		if reviewer.Email == email {
			match := reviewer
			return &match, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *reviewerRepo) ListEligible(ctx context.Context, roles []domain.ReviewerRole, departments []string) ([]domain.Reviewer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []domain.Reviewer
	for _, reviewer := range r.store.reviewers {
		if !reviewer.Active {
			continue
		}
		if len(roles) > 0 && !containsRole(roles, reviewer.Role) {
			continue
		}
		if len(departments) > 0 && !containsString(departments, reviewer.Department) {
			continue
		}
		result = append(result, reviewer)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Cursor is the in-memory atomic counter for round-robin selection.
type Cursor struct {
	mu        sync.Mutex
	positions map[string]int64
}

// NewCursor builds an empty cursor repository.
func NewCursor() *Cursor {
	return &Cursor{positions: make(map[string]int64)}
}

func (c *Cursor) Next(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions[key]++
	return c.positions[key], nil
}

func paginate[T any](records []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return nil
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}

func containsStatus(list []domain.ItemStatus, v domain.ItemStatus) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.ItemPriority, v domain.ItemPriority) bool {
	for _, p := range list {
		if p == v {
			return true
		}
	}
	return false
}

func containsRole(list []domain.ReviewerRole, v domain.ReviewerRole) bool {
	for _, r := range list {
		if r == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
