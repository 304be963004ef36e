package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-service/internal/api/dto"
	"github.com/spec-kit/compliance-service/internal/auth"
	"github.com/spec-kit/compliance-service/internal/service"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// NotificationsHandler exposes the reviewer inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService}
}

// ListInbox GET /notifications.
func (h *NotificationsHandler) ListInbox(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Reviewer == nil {
		return apperrors.NewUnauthorized("reviewer required")
	}
	unreadOnly := c.QueryBool("unread_only", false)
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	notifications, err := h.notifications.ListInbox(c.Context(), principal.Reviewer.ID, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		resp = append(resp, dto.NotificationResponse{
			ID:        n.ID,
			ItemID:    n.ItemID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Priority:  n.Priority,
			CreatedAt: n.CreatedAt,
			IsRead:    n.IsRead,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Reviewer == nil {
		return apperrors.NewUnauthorized("reviewer required")
	}
	if err := h.notifications.MarkRead(c.Context(), principal.Reviewer.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"marked_read": true}})
}
