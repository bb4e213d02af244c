package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/metrics"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

// job is one queued delivery. Exactly one of recipientID and role is set.
type job struct {
	recipientID string
	role        user.Role
	event       notification.Event
}

type service struct {
	repo      notification.Repository
	directory user.Directory
	hub       *sse.Hub
	publisher notification.Publisher
	config    Config

	queue  chan job
	wg     sync.WaitGroup
	stopCh chan struct{}

	// mu orders queue sends before Stop: once stopped is set under the write
	// lock, no job can enter the queue behind the draining workers.
	mu      sync.RWMutex
	stopped bool
}

// NewNotificationService creates a new notification service with background workers.
// publisher may be nil.
func NewNotificationService(
	repo notification.Repository,
	directory user.Directory,
	hub *sse.Hub,
	publisher notification.Publisher,
	cfg Config,
) notification.Service {
	// Set defaults
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if publisher == nil {
		publisher = NoopPublisher()
	}

	s := &service{
		repo:      repo,
		directory: directory,
		hub:       hub,
		publisher: publisher,
		config:    cfg,
		queue:     make(chan job, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)

	return s
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]*notification.Notification, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.store(ctx, batch, "worker", id)
		batch = batch[:0]
	}

	add := func(j job) {
		metrics.NotificationQueueDepth.Set(float64(len(s.queue)))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		batch = append(batch, s.expand(ctx, j)...)
		cancel()

		if len(batch) >= s.config.BatchSize {
			flush()
		}
	}

	for {
		select {
		case j := <-s.queue:
			add(j)
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case j := <-s.queue:
					add(j)
				default:
					flush()
					return
				}
			}
		}
	}
}

// expand turns a job into one notification per recipient. Role membership is
// read from the directory here, at dispatch time.
func (s *service) expand(ctx context.Context, j job) []*notification.Notification {
	now := time.Now()

	if j.role == "" {
		return []*notification.Notification{j.event.ToNotification(uuid.New().String(), j.recipientID, now)}
	}

	members, err := s.directory.ListByRole(ctx, j.role)
	if err != nil {
		metrics.NotificationsDispatched.WithLabelValues("resolve_failed").Inc()
		slog.ErrorContext(ctx, "Failed to resolve role members",
			"role", j.role,
			"type", j.event.Type,
			"error", err,
		)
		return nil
	}

	out := make([]*notification.Notification, 0, len(members))
	for _, m := range members {
		// The actor does not need to hear about their own action.
		if j.event.SenderID != nil && *j.event.SenderID == m.ID {
			continue
		}
		out = append(out, j.event.ToNotification(uuid.New().String(), m.ID, now))
	}
	return out
}

// store inserts notifications and pushes them to SSE subscribers and the publisher.
func (s *service) store(ctx context.Context, notifications []*notification.Notification, source string, workerID int) {
	if len(notifications) == 0 {
		return
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		metrics.NotificationsDispatched.WithLabelValues("store_failed").Add(float64(len(notifications)))
		slog.ErrorContext(ctx, "Failed to insert notifications",
			"source", source,
			"worker", workerID,
			"count", len(notifications),
			"error", err,
		)
		return
	}

	metrics.NotificationsDispatched.WithLabelValues("stored").Add(float64(len(notifications)))
	slog.DebugContext(ctx, "Inserted notifications", "source", source, "worker", workerID, "count", len(notifications))

	// Push to SSE subscribers
	for _, n := range notifications {
		s.hub.Publish(n.RecipientID, sse.Event{
			UserID: n.RecipientID,
			Event:  "notification",
			Data:   notification.ToResponse(n),
		})
	}

	if err := s.publisher.Publish(ctx, notifications); err != nil {
		metrics.NotificationsDispatched.WithLabelValues("publish_failed").Add(float64(len(notifications)))
		slog.WarnContext(ctx, "Failed to publish notification events", "count", len(notifications), "error", err)
	}
}

// NotifyUser implements notification.Sink.
func (s *service) NotifyUser(ctx context.Context, userID string, event notification.Event) {
	s.enqueue(ctx, job{recipientID: userID, event: event})
}

// NotifyRole implements notification.Sink.
func (s *service) NotifyRole(ctx context.Context, role user.Role, event notification.Event) {
	s.enqueue(ctx, job{role: role, event: event})
}

func (s *service) enqueue(ctx context.Context, j job) {
	if s.tryQueue(j) {
		return
	}

	// Queue full or service stopped, insert directly
	slog.WarnContext(ctx, "Notification queue unavailable, inserting directly", "type", j.event.Type)
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	s.store(dctx, s.expand(dctx, j), "direct", -1)
}

func (s *service) tryQueue(j job) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return false
	}
	select {
	case s.queue <- j:
		return true
	default:
		return false
	}
}

// GetNotifications retrieves paginated notifications for a user
func (s *service) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.GetByUserID(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetUnreadCount returns the count of unread notifications
func (s *service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks specified notifications as read
func (s *service) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, req.NotificationIDs, userID)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Subscribe creates an SSE subscription for a user
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if resp, ok := event.Data.(notification.NotificationResponse); ok {
					select {
					case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop drains the queue, stops the workers and closes the publisher.
func (s *service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	if err := s.publisher.Close(); err != nil {
		slog.Warn("Failed to close notification publisher", "error", err)
	}
	slog.Info("Notification service stopped")
}
