package leave

import (
	"context"
	"strings"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/metrics"
)

// checkAvailability runs the overlap and balance rules for r. Called inside
// the workflow transaction.
func (s *LeaveServiceImpl) checkAvailability(ctx context.Context, r leave.LeaveRequest) error {
	overlap, err := s.overlap.HasOverlap(ctx, r.UserID, r.StartDate, r.EndDate, r.ID)
	if err != nil {
		return err
	}
	if overlap {
		return leave.ErrOverlappingLeave
	}

	if !s.policy.Enforces(r.LeaveType) {
		return nil
	}

	remaining, err := s.entitlement.RemainingDays(ctx, r.UserID, r.LeaveType, r.StartDate.Year())
	if err != nil {
		return err
	}
	if r.TotalDays > remaining {
		return &leave.InsufficientBalanceError{
			LeaveType: r.LeaveType,
			Requested: r.TotalDays,
			Remaining: remaining,
		}
	}

	return nil
}

func withSubject(r *leave.LeaveRequest, u user.User) {
	name := u.FullName()
	email := u.Email
	role := u.Role
	r.UserName = &name
	r.UserEmail = &email
	r.UserRole = &role
}

// Create implements leave.LeaveService.
func (s *LeaveServiceImpl) Create(ctx context.Context, userID string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	const action = "create"

	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, action, err)
	}
	start, end := req.Dates()
	if err := leave.ValidateSchedule(start, end, s.now()); err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, action, err)
	}

	subject, err := s.access.user(ctx, userID)
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, action, err)
	}

	now := s.now()
	request := leave.LeaveRequest{
		UserID:    userID,
		LeaveType: leave.LeaveType(req.LeaveType),
		Reason:    strings.TrimSpace(req.Reason),
		Status:    leave.LeaveStatusPending,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	request.SetDates(start, end)

	var created leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkAvailability(ctx, request); err != nil {
			return err
		}

		c, err := s.leaveRepo.Create(ctx, request)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, action, err)
	}

	withSubject(&created, subject)
	metrics.LeaveTransitions.WithLabelValues(action).Inc()
	s.notifyApprovers(ctx, applicationEvent(created))

	return leave.NewLeaveResponse(created, nil), nil
}

// Update implements leave.LeaveService. A request that changes nothing
// returns the stored leave untouched.
func (s *LeaveServiceImpl) Update(ctx context.Context, userID, leaveID string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error) {
	const action = "update"

	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, action, err)
	}

	var (
		updated leave.LeaveRequest
		changes leave.UpdateChanges
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.leaveRepo.GetByID(ctx, leaveID)
		if err != nil {
			return err
		}
		if err := requireOwner(userID, r); err != nil {
			return err
		}
		if _, err := leave.NextStatus(r, leave.ActionUpdate, s.now()); err != nil {
			return err
		}

		changes = req.Apply(&r)
		if !changes.Any() {
			updated = r
			return nil
		}

		// A leave whose start has passed stays editable as long as the start
		// itself is not moved.
		if changes.StartDate {
			if err := leave.ValidateSchedule(r.StartDate, r.EndDate, s.now()); err != nil {
				return err
			}
		} else if err := leave.ValidateDateRange(r.StartDate, r.EndDate); err != nil {
			return err
		}
		if err := s.checkAvailability(ctx, r); err != nil {
			return err
		}

		r.UpdatedAt = s.now()
		if err := s.leaveRepo.Update(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, action, err)
	}

	if changes.Any() {
		metrics.LeaveTransitions.WithLabelValues(action).Inc()
	}

	resp, err := s.project(ctx, updated)
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, action, err)
	}
	return resp, nil
}

// Cancel implements leave.LeaveService.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, userID, leaveID string) (leave.LeaveResponse, error) {
	const action = "cancel"

	var cancelled leave.LeaveRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.leaveRepo.GetByID(ctx, leaveID)
		if err != nil {
			return err
		}
		if err := requireOwner(userID, r); err != nil {
			return err
		}

		next, err := leave.NextStatus(r, leave.ActionCancel, s.now())
		if err != nil {
			return err
		}
		r.Status = next
		r.UpdatedAt = s.now()

		if err := s.leaveRepo.Update(ctx, r); err != nil {
			return err
		}
		cancelled = r
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, action, err)
	}

	metrics.LeaveTransitions.WithLabelValues(action).Inc()
	s.notifyApprovers(ctx, cancellationEvent(cancelled))

	resp, err := s.project(ctx, cancelled)
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, action, err)
	}
	return resp, nil
}

// Delete implements leave.LeaveService. The leave and its attachments are
// deactivated together; files are removed after commit.
func (s *LeaveServiceImpl) Delete(ctx context.Context, userID, leaveID string) error {
	const action = "delete"

	var removed []leave.LeaveAttachment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.leaveRepo.GetByID(ctx, leaveID)
		if err != nil {
			return err
		}
		if err := requireOwner(userID, r); err != nil {
			return err
		}
		if _, err := leave.NextStatus(r, leave.ActionDelete, s.now()); err != nil {
			return err
		}

		if err := s.leaveRepo.SoftDelete(ctx, r.ID); err != nil {
			return err
		}
		removed, err = s.attachRepo.SoftDeleteByLeave(ctx, r.ID)
		return err
	})
	if err != nil {
		return s.fail(ctx, action, err)
	}

	metrics.LeaveTransitions.WithLabelValues(action).Inc()
	for _, a := range removed {
		s.attachments.removeFile(ctx, a.FilePath)
	}

	return nil
}

// Decide implements leave.LeaveService. Only admin and hr may decide, and
// only while the leave is pending.
func (s *LeaveServiceImpl) Decide(ctx context.Context, approverID, leaveID string, req leave.DecisionRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, "decide", err)
	}
	action, _ := leave.ActionForDecision(leave.LeaveStatus(req.Status))

	approver, err := s.access.requireApprover(ctx, approverID)
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, string(action), err)
	}

	var decided leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.leaveRepo.GetByID(ctx, leaveID)
		if err != nil {
			return err
		}

		next, err := leave.NextStatus(r, action, s.now())
		if err != nil {
			return err
		}
		r.Decide(next, approverID, s.now(), req.TrimmedComments())

		if err := s.leaveRepo.Update(ctx, r); err != nil {
			return err
		}
		decided = r
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, string(action), err)
	}

	approverName := approver.FullName()
	decided.ApprovedByName = &approverName

	metrics.LeaveTransitions.WithLabelValues(string(action)).Inc()
	s.sink.NotifyUser(ctx, decided.UserID, decisionEvent(decided, approverID))

	resp, err := s.project(ctx, decided)
	if err != nil {
		return leave.LeaveResponse{}, s.fail(ctx, string(action), err)
	}
	return resp, nil
}
