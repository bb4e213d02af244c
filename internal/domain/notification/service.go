package notification

import (
	"context"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
)

// Sink delivers workflow events. Delivery is best-effort and never reports
// failure to the caller.
type Sink interface {
	NotifyUser(ctx context.Context, userID string, event Event)
	// NotifyRole resolves the role's members when the event is dispatched.
	NotifyRole(ctx context.Context, role user.Role, event Event)
}

// Service defines the notification service interface
type Service interface {
	Sink

	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}
