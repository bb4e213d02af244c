package leave

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/metrics"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/validator"
	"github.com/teamdesk/teamdesk-backend-go/internal/service/file"
)

type LeaveServiceImpl struct {
	tx         leave.Transactor
	leaveRepo  leave.LeaveRequestRepository
	attachRepo leave.AttachmentRepository
	access     access

	overlap     *OverlapValidator
	entitlement *EntitlementCalculator
	attachments *AttachmentManager
	sink        notification.Sink

	policy leave.BalancePolicy
	now    func() time.Time
}

// Option configures a LeaveServiceImpl.
type Option func(*LeaveServiceImpl)

// WithClock replaces time.Now. Tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *LeaveServiceImpl) {
		s.now = now
	}
}

// WithBalancePolicy sets the leave types whose balance is enforced.
func WithBalancePolicy(policy leave.BalancePolicy) Option {
	return func(s *LeaveServiceImpl) {
		s.policy = policy
	}
}

func NewLeaveService(
	tx leave.Transactor,
	leaveRepo leave.LeaveRequestRepository,
	attachRepo leave.AttachmentRepository,
	directory user.Directory,
	fileService file.FileService,
	sink notification.Sink,
	opts ...Option,
) leave.LeaveService {
	s := &LeaveServiceImpl{
		tx:          tx,
		leaveRepo:   leaveRepo,
		attachRepo:  attachRepo,
		access:      access{directory: directory},
		overlap:     NewOverlapValidator(leaveRepo),
		entitlement: NewEntitlementCalculator(leaveRepo, directory),
		sink:        sink,
		policy:      leave.DefaultBalancePolicy(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.attachments = newAttachmentManager(leaveRepo, attachRepo, fileService, s.access, s.now)

	return s
}

// fail counts business rule refusals and passes them through untouched.
// Anything else is logged and wrapped.
func (s *LeaveServiceImpl) fail(ctx context.Context, action string, err error) error {
	if category := leave.Category(err); category != "" {
		metrics.LeaveRejections.WithLabelValues(action, category).Inc()
		return err
	}
	slog.ErrorContext(ctx, "leave operation failed", "action", action, "error", err)
	return fmt.Errorf("leave %s failed: %w", action, err)
}

// project loads the attachments of r and builds its response.
func (s *LeaveServiceImpl) project(ctx context.Context, r leave.LeaveRequest) (leave.LeaveResponse, error) {
	attachments, err := s.attachRepo.ListByLeave(ctx, r.ID)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to list attachments: %w", err)
	}
	return leave.NewLeaveResponse(r, attachments), nil
}

// GetByID implements leave.LeaveService.
func (s *LeaveServiceImpl) GetByID(ctx context.Context, actorID, leaveID string) (leave.LeaveResponse, error) {
	r, err := s.leaveRepo.GetByID(ctx, leaveID)
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, "get", err)
	}
	if err := s.access.canAccess(ctx, actorID, r); err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, "get", err)
	}

	resp, err := s.project(ctx, r)
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, "get", err)
	}
	return resp, nil
}

// ListMine implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMine(ctx context.Context, userID string, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// ListAll implements leave.LeaveService.
func (s *LeaveServiceImpl) ListAll(ctx context.Context, actorID string, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if _, err := s.access.requireApprover(ctx, actorID); err != nil {
		return leave.ListLeaveRequestResponse{}, s.fail(ctx, "list", err)
	}
	return s.list(ctx, filter)
}

// ListPending implements leave.LeaveService. Oldest requests come first.
func (s *LeaveServiceImpl) ListPending(ctx context.Context, actorID string, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	status := string(leave.LeaveStatusPending)
	filter.Status = &status
	filter.SortOrder = "asc"
	return s.ListAll(ctx, actorID, filter)
}

// ListByStatus implements leave.LeaveService.
func (s *LeaveServiceImpl) ListByStatus(ctx context.Context, actorID string, status leave.LeaveStatus, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	st := string(status)
	filter.Status = &st
	return s.ListAll(ctx, actorID, filter)
}

func (s *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	// Validate filter
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, s.fail(ctx, "list", err)
	}

	requests, totalCount, err := s.leaveRepo.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, s.fail(ctx, "list", err)
	}

	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}
	attachments, err := s.attachRepo.ListByLeaveIDs(ctx, ids)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, s.fail(ctx, "list", err)
	}

	// Map to response
	responses := make([]leave.LeaveResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.NewLeaveResponse(r, attachments[r.ID]))
	}

	// Calculate pagination metadata
	totalPages := int(math.Ceil(float64(totalCount) / float64(filter.Limit)))

	// Calculate "showing" text
	start := (filter.Page-1)*filter.Limit + 1
	end := start + len(responses) - 1
	if end > int(totalCount) {
		end = int(totalCount)
	}

	showing := fmt.Sprintf("%d-%d of %d results", start, end, totalCount)
	if totalCount == 0 {
		showing = "0 results"
	} else if len(responses) == 0 {
		showing = fmt.Sprintf("0 of %d results", totalCount)
	}

	return leave.ListLeaveRequestResponse{
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Leaves:     responses,
	}, nil
}

// Stats implements leave.LeaveService. Only approvers may look at other
// users or at everyone; anyone else gets their own numbers.
func (s *LeaveServiceImpl) Stats(ctx context.Context, actorID string, targetUserID *string) (leave.StatsResponse, error) {
	approver, err := s.access.isApprover(ctx, actorID)
	if err != nil {
		return leave.StatsResponse{}, s.fail(ctx, "stats", err)
	}
	if !approver {
		targetUserID = &actorID
	}

	stats, err := s.leaveRepo.Stats(ctx, targetUserID)
	if err != nil {
		return leave.StatsResponse{}, s.fail(ctx, "stats", err)
	}

	resp := leave.StatsResponse{
		UserID:         targetUserID,
		TotalLeaves:    stats.TotalLeaves,
		PendingLeaves:  stats.PendingLeaves,
		ApprovedLeaves: stats.ApprovedLeaves,
		RejectedLeaves: stats.RejectedLeaves,
		LeavesByType:   make(map[string]int, len(stats.ByType)),
		LeavesByStatus: make(map[string]int, len(stats.ByStatus)),
	}
	for t, n := range stats.ByType {
		resp.LeavesByType[string(t)] = n
	}
	for st, n := range stats.ByStatus {
		resp.LeavesByStatus[string(st)] = n
	}

	if targetUserID != nil {
		remaining, err := s.entitlement.RemainingDays(ctx, *targetUserID, leave.LeaveTypeAnnual, s.now().Year())
		if err != nil {
			return leave.StatsResponse{}, s.fail(ctx, "stats", err)
		}
		resp.RemainingAnnualLeaves = &remaining
	}

	return resp, nil
}

// RemainingDays implements leave.LeaveService. year 0 means the current year.
func (s *LeaveServiceImpl) RemainingDays(ctx context.Context, userID string, leaveType leave.LeaveType, year int) (leave.BalanceResponse, error) {
	if !leaveType.IsValid() {
		return leave.BalanceResponse{}, s.fail(ctx, "balance", validator.Single("leave_type", "leave_type is not a valid leave type"))
	}
	if year == 0 {
		year = s.now().Year()
	}
	if year < 1 {
		return leave.BalanceResponse{}, s.fail(ctx, "balance", validator.Single("year", "year must be a positive number"))
	}

	b, err := s.entitlement.Balance(ctx, userID, leaveType, year)
	if err != nil {
		return leave.BalanceResponse{}, s.fail(ctx, "balance", err)
	}

	return leave.BalanceResponse{
		UserID:        userID,
		LeaveType:     string(leaveType),
		LeaveTypeName: leaveType.Label(),
		Year:          year,
		Entitlement:   b.Entitlement,
		Used:          b.Used,
		Remaining:     b.Remaining,
	}, nil
}

// UploadAttachment implements leave.LeaveService.
func (s *LeaveServiceImpl) UploadAttachment(ctx context.Context, actorID, leaveID string, file leave.AttachmentUpload) (leave.AttachmentResponse, error) {
	a, err := s.attachments.Upload(ctx, leaveID, file, actorID)
	if err != nil {
		return leave.AttachmentResponse{}, s.fail(ctx, "upload_attachment", err)
	}
	return leave.NewAttachmentResponse(a), nil
}

// DeleteAttachment implements leave.LeaveService.
func (s *LeaveServiceImpl) DeleteAttachment(ctx context.Context, actorID, leaveID, attachmentID string) error {
	if err := s.attachments.Delete(ctx, leaveID, attachmentID, actorID); err != nil {
		return s.fail(ctx, "delete_attachment", err)
	}
	return nil
}

// ListAttachments implements leave.LeaveService.
func (s *LeaveServiceImpl) ListAttachments(ctx context.Context, actorID, leaveID string) ([]leave.AttachmentResponse, error) {
	attachments, err := s.attachments.List(ctx, leaveID, actorID)
	if err != nil {
		return nil, s.fail(ctx, "list_attachments", err)
	}

	resp := make([]leave.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		resp = append(resp, leave.NewAttachmentResponse(a))
	}
	return resp, nil
}
