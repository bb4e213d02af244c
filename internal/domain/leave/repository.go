package leave

import (
	"context"
)

// LeaveRequestRepository - interface for leave_requests table.
// Every read only sees active rows.
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// ListBlockingByUser returns the user's pending and approved leaves.
	ListBlockingByUser(ctx context.Context, userID string) ([]LeaveRequest, error)
	SumApprovedDays(ctx context.Context, userID string, leaveType LeaveType, year int) (int, error)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	Update(ctx context.Context, request LeaveRequest) error
	SoftDelete(ctx context.Context, id string) error
	// Stats aggregates every user when userID is nil.
	Stats(ctx context.Context, userID *string) (LeaveStats, error)
}

// AttachmentRepository - interface for leave_attachments table
type AttachmentRepository interface {
	Create(ctx context.Context, attachment LeaveAttachment) (LeaveAttachment, error)
	GetByID(ctx context.Context, id string) (LeaveAttachment, error)
	ListByLeave(ctx context.Context, leaveID string) ([]LeaveAttachment, error)
	ListByLeaveIDs(ctx context.Context, leaveIDs []string) (map[string][]LeaveAttachment, error)
	SoftDelete(ctx context.Context, id string) error
	// SoftDeleteByLeave deactivates every attachment of a leave and returns them.
	SoftDeleteByLeave(ctx context.Context, leaveID string) ([]LeaveAttachment, error)
}

// Transactor runs fn inside one transaction carried by the context.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
