package leave

import (
	"context"
	"fmt"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
)

const relatedEntityLeave = "leave"

func leaveEvent(r leave.LeaveRequest, senderID string, typ notification.NotificationType, title, message string) notification.Event {
	id := r.ID
	entity := relatedEntityLeave
	return notification.Event{
		Type:              typ,
		Title:             title,
		Message:           message,
		SenderID:          &senderID,
		RelatedEntityID:   &id,
		RelatedEntityType: &entity,
		Data: map[string]interface{}{
			"leave_id":   r.ID,
			"leave_type": string(r.LeaveType),
			"status":     string(r.Status),
			"start_date": r.StartDate.Format(leave.DateLayout),
			"end_date":   r.EndDate.Format(leave.DateLayout),
			"total_days": r.TotalDays,
		},
	}
}

func subjectName(r leave.LeaveRequest) string {
	if r.UserName != nil && *r.UserName != "" {
		return *r.UserName
	}
	return "A user"
}

func applicationEvent(r leave.LeaveRequest) notification.Event {
	message := fmt.Sprintf("%s has applied for %s from %s (%d days). Reason: %s",
		subjectName(r), r.LeaveType.Label(), leave.FormatRange(r.StartDate, r.EndDate), r.TotalDays, r.Reason)
	return leaveEvent(r, r.UserID, notification.TypeLeaveApplication, "New Leave Application", message)
}

func cancellationEvent(r leave.LeaveRequest) notification.Event {
	message := fmt.Sprintf("%s has cancelled their %s application for %s.",
		subjectName(r), r.LeaveType.Label(), leave.FormatRange(r.StartDate, r.EndDate))
	return leaveEvent(r, r.UserID, notification.TypeLeaveCancelled, "Leave Application Cancelled", message)
}

// decisionEvent builds the status-specific message sent to the subject.
func decisionEvent(r leave.LeaveRequest, approverID string) notification.Event {
	subject := fmt.Sprintf("Your %s application for %s", r.LeaveType.Label(), leave.FormatRange(r.StartDate, r.EndDate))

	switch r.Status {
	case leave.LeaveStatusApproved:
		message := subject + " has been approved."
		if r.ApprovalComments != nil {
			message += " Comments: " + *r.ApprovalComments
		}
		return leaveEvent(r, approverID, notification.TypeLeaveApproved, "Leave Application Approved", message)
	case leave.LeaveStatusRejected:
		message := subject + " has been rejected."
		if r.ApprovalComments != nil {
			message += " Reason: " + *r.ApprovalComments
		}
		return leaveEvent(r, approverID, notification.TypeLeaveRejected, "Leave Application Rejected", message)
	case leave.LeaveStatusCancelled:
		return leaveEvent(r, approverID, notification.TypeLeaveCancelled, "Leave Application Cancelled",
			subject+" has been cancelled.")
	default:
		return leaveEvent(r, approverID, notification.TypeLeaveStatusUpdated, "Leave Status Updated",
			fmt.Sprintf("%s status has been updated to %s.", subject, r.Status.Label()))
	}
}

// notifyApprovers broadcasts to every approver role. Delivery happens after
// commit and never fails the workflow.
func (s *LeaveServiceImpl) notifyApprovers(ctx context.Context, event notification.Event) {
	for _, role := range user.ApproverRoles() {
		s.sink.NotifyRole(ctx, role, event)
	}
}
