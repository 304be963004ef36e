package domain

import "time"

// NotificationType enumerates why a reviewer is being notified.
type NotificationType string

const (
	NotificationTypeAssignment   NotificationType = "assignment"
	NotificationTypeStatusChange NotificationType = "status_change"
)

// Notification is a queued message to a reviewer. Records are written by the
// engine in the same transaction as the change they announce; delivery is a
// separate concern and never blocks the engine.
type Notification struct {
	ID        string
	Recipient string
	ItemID    string
	Title     string
	Message   string
	Type      NotificationType
	Priority  ItemPriority
	CreatedAt time.Time
	IsRead    bool
}
