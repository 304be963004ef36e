package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/compliance-service/internal/config"
	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/events"
	"github.com/spec-kit/compliance-service/internal/repository"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// NotificationService handles the reviewer inbox and post-commit delivery of
// domain events. Notification records are written by the engine inside its
// transaction; this service only reads them and pushes delivery stubs.
type NotificationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// ListInbox returns a reviewer's notifications.
func (n *NotificationService) ListInbox(ctx context.Context, reviewerID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	notifications, err := n.store.Notifications().ListByRecipient(ctx, reviewerID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return notifications, nil
}

// MarkRead flags one of the reviewer's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, reviewerID, notificationID string) error {
	if err := n.store.Notifications().MarkRead(ctx, notificationID, reviewerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.NewStoreError(err)
	}
	return nil
}

// RegisterHandlers subscribes to engine events for delivery.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventItemCreated, n.handleItemCreated)
	n.dispatcher.Subscribe(events.EventItemAssigned, n.handleItemAssigned)
	n.dispatcher.Subscribe(events.EventItemStatusChanged, n.handleItemStatusChanged)
}

func (n *NotificationService) handleItemCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ItemCreated", zap.String("item_id", event.ItemID), zap.Any("payload", event.Payload))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleItemAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("ItemAssigned", zap.String("item_id", event.ItemID), zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleItemStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ItemStatusChanged", zap.String("item_id", event.ItemID), zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("item_id", event.ItemID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("item_id", event.ItemID),
		zap.String("event_type", string(event.Type)))
}
