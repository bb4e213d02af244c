package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
)

const notificationPurgeInterval = time.Hour

// NotificationJobs keeps the notifications table bounded.
type NotificationJobs struct {
	repo      notification.Repository
	retention time.Duration
	now       func() time.Time
}

func NewNotificationJobs(repo notification.Repository, retention time.Duration) *NotificationJobs {
	return &NotificationJobs{
		repo:      repo,
		retention: retention,
		now:       time.Now,
	}
}

// RegisterJobs adds the purge job unless retention is disabled.
func (j *NotificationJobs) RegisterJobs(scheduler *Scheduler) {
	if j.retention <= 0 {
		return
	}
	scheduler.AddJob("purge_read_notifications", notificationPurgeInterval, j.PurgeReadNotifications)
}

// PurgeReadNotifications deletes read notifications older than the retention window.
func (j *NotificationJobs) PurgeReadNotifications(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)

	deleted, err := j.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge read notifications: %w", err)
	}

	if deleted > 0 {
		slog.InfoContext(ctx, "Cron: purged read notifications", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}
