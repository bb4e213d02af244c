package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveApplication   NotificationType = "leave_application"
	TypeLeaveApproved      NotificationType = "leave_approved"
	TypeLeaveRejected      NotificationType = "leave_rejected"
	TypeLeaveCancelled     NotificationType = "leave_cancelled"
	TypeLeaveStatusUpdated NotificationType = "leave_status_updated"
)

// Notification is a stored, per-recipient notification.
type Notification struct {
	ID                string
	RecipientID       string
	SenderID          *string
	Type              NotificationType
	Title             string
	Message           string
	RelatedEntityID   *string
	RelatedEntityType *string
	Data              map[string]interface{}
	IsRead            bool
	ReadAt            *time.Time
	CreatedAt         time.Time
}

// Event is what a workflow hands to a Sink. Recipients are chosen by the
// Sink method, not by the event.
type Event struct {
	Type              NotificationType
	Title             string
	Message           string
	SenderID          *string
	RelatedEntityID   *string
	RelatedEntityType *string
	Data              map[string]interface{}
}

// ToNotification builds the stored notification for one recipient.
func (e Event) ToNotification(id, recipientID string, at time.Time) *Notification {
	return &Notification{
		ID:                id,
		RecipientID:       recipientID,
		SenderID:          e.SenderID,
		Type:              e.Type,
		Title:             e.Title,
		Message:           e.Message,
		RelatedEntityID:   e.RelatedEntityID,
		RelatedEntityType: e.RelatedEntityType,
		Data:              e.Data,
		CreatedAt:         at,
	}
}
