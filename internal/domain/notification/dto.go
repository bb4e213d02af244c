package notification

import (
	"time"

	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/validator"
)

// MarkAsReadRequest represents a request to mark notifications as read
type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

func (r *MarkAsReadRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.NotificationIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "notification_ids",
			Message: "notification_ids must contain at least one id",
		})
	}
	for _, id := range r.NotificationIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "notification_ids",
				Message: "notification_ids must contain valid UUIDs",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID                string                 `json:"id"`
	Type              NotificationType       `json:"type"`
	Title             string                 `json:"title"`
	Message           string                 `json:"message"`
	RelatedEntityID   *string                `json:"related_entity_id,omitempty"`
	RelatedEntityType *string                `json:"related_entity_type,omitempty"`
	Data              map[string]interface{} `json:"data,omitempty"`
	IsRead            bool                   `json:"is_read"`
	ReadAt            *time.Time             `json:"read_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSETokenResponse carries a short-lived token for the event stream
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}

func ToResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:                n.ID,
		Type:              n.Type,
		Title:             n.Title,
		Message:           n.Message,
		RelatedEntityID:   n.RelatedEntityID,
		RelatedEntityType: n.RelatedEntityType,
		Data:              n.Data,
		IsRead:            n.IsRead,
		ReadAt:            n.ReadAt,
		CreatedAt:         n.CreatedAt,
	}
}
