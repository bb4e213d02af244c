package notification

import (
	"context"
	"time"
)

// Repository defines the notification repository interface
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*Notification, int, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, ids []string, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	// DeleteReadBefore removes read notifications created before the cutoff.
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}

// Publisher forwards stored notifications to an external event stream.
type Publisher interface {
	Publish(ctx context.Context, notifications []*Notification) error
	Close() error
}
