package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/compliance-service/internal/config"
	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/events"
	"github.com/spec-kit/compliance-service/internal/repository/memory"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

func TestNotificationInboxAndMarkRead(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewNotificationService(store, events.NewInMemoryDispatcher(), zap.NewNop(), config.NotificationConfig{})

	first := &domain.Notification{Recipient: "r-1", ItemID: "i-1", Title: "one"}
	require.NoError(t, store.Notifications().Create(ctx, first))
	require.NoError(t, store.Notifications().Create(ctx, &domain.Notification{Recipient: "r-2", ItemID: "i-1", Title: "two"}))

	inbox, err := service.ListInbox(ctx, "r-1", false, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, "one", inbox[0].Title)

	require.NoError(t, service.MarkRead(ctx, "r-1", first.ID))

	unread, err := service.ListInbox(ctx, "r-1", true, 10, 0)
	require.NoError(t, err)
	require.Empty(t, unread)
}

func TestMarkRead_UnknownNotification(t *testing.T) {
	store := memory.NewStore()
	service := NewNotificationService(store, events.NewInMemoryDispatcher(), zap.NewNop(), config.NotificationConfig{})

	err := service.MarkRead(context.Background(), "r-1", "missing")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
}
