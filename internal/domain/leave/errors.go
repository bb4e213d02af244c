package leave

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/validator"
)

// Error categories. Concrete errors wrap one of these so callers can use errors.Is.
var (
	ErrValidation          = validator.ErrValidation
	ErrConflict            = errors.New("conflict")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrInvalidState        = errors.New("invalid leave state")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
)

var (
	ErrLeaveRequestNotFound = fmt.Errorf("%w: Leave request not found", ErrNotFound)
	ErrAttachmentNotFound   = fmt.Errorf("%w: Attachment not found", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("%w: User not found", ErrNotFound)

	ErrOverlappingLeave = fmt.Errorf("%w: You already have a leave request that overlaps with the selected dates", ErrConflict)

	ErrNotLeaveOwner = fmt.Errorf("%w: You can only modify your own leave requests", ErrForbidden)
	ErrNotApprover   = fmt.Errorf("%w: Only admin or hr users can perform this action", ErrForbidden)
	ErrLeaveAccess   = fmt.Errorf("%w: You do not have access to this leave request", ErrForbidden)
)

// InsufficientBalanceError reports a request that exceeds the remaining entitlement.
type InsufficientBalanceError struct {
	LeaveType LeaveType
	Requested int
	Remaining int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient %s balance. Requested: %d days, Available: %d days",
		strings.ToLower(e.LeaveType.Label()), e.Requested, e.Remaining)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// InvalidStateError reports an action that the current status does not allow.
type InvalidStateError struct {
	Status  LeaveStatus
	Action  Action
	Message string
}

func (e *InvalidStateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Action {
	case ActionUpdate:
		return fmt.Sprintf("Cannot update leave with status %s. Only pending leaves can be modified.", e.Status.Label())
	case ActionDelete:
		return fmt.Sprintf("Cannot delete leave with status %s. Only pending leaves can be deleted.", e.Status.Label())
	case ActionApprove, ActionReject:
		return fmt.Sprintf("Leave is already %s", e.Status.Label())
	default:
		return fmt.Sprintf("Cannot %s leave with status %s", e.Action, e.Status.Label())
	}
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// Category names the error category of err, or returns "" for errors outside
// the domain taxonomy.
func Category(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return ""
	}
}
