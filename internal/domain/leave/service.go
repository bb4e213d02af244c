package leave

import (
	"context"
)

type LeaveService interface {
	// Workflow
	Create(ctx context.Context, userID string, req CreateLeaveRequest) (LeaveResponse, error)
	Update(ctx context.Context, userID, leaveID string, req UpdateLeaveRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, userID, leaveID string) (LeaveResponse, error)
	Delete(ctx context.Context, userID, leaveID string) error
	Decide(ctx context.Context, approverID, leaveID string, req DecisionRequest) (LeaveResponse, error)
	// Reads
	GetByID(ctx context.Context, actorID, leaveID string) (LeaveResponse, error)
	ListMine(ctx context.Context, userID string, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListAll(ctx context.Context, actorID string, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListPending(ctx context.Context, actorID string, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListByStatus(ctx context.Context, actorID string, status LeaveStatus, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	Stats(ctx context.Context, actorID string, targetUserID *string) (StatsResponse, error)
	RemainingDays(ctx context.Context, userID string, leaveType LeaveType, year int) (BalanceResponse, error)
	// Attachments
	UploadAttachment(ctx context.Context, actorID, leaveID string, file AttachmentUpload) (AttachmentResponse, error)
	DeleteAttachment(ctx context.Context, actorID, leaveID, attachmentID string) error
	ListAttachments(ctx context.Context, actorID, leaveID string) ([]AttachmentResponse, error)
}
