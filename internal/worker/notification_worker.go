package worker

import (
	"github.com/spec-kit/compliance-service/internal/service"
)

// StartNotificationWorker registers the delivery handlers for engine events.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
