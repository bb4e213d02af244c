package leave

import "time"

// Action is a workflow operation applied to an existing leave request.
type Action string

const (
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionCancel  Action = "cancel"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type transitionKey struct {
	from   LeaveStatus
	action Action
}

type transition struct {
	to    LeaveStatus
	guard func(r LeaveRequest, today time.Time) error
}

// transitions lists every permitted (status, action) pair. Anything missing
// is rejected, which also blocks re-deciding an approved or rejected leave.
var transitions = map[transitionKey]transition{
	{LeaveStatusPending, ActionUpdate}:  {to: LeaveStatusPending},
	{LeaveStatusPending, ActionDelete}:  {to: LeaveStatusPending},
	{LeaveStatusPending, ActionCancel}:  {to: LeaveStatusCancelled},
	{LeaveStatusApproved, ActionCancel}: {to: LeaveStatusCancelled, guard: notStarted},
	{LeaveStatusPending, ActionApprove}: {to: LeaveStatusApproved},
	{LeaveStatusPending, ActionReject}:  {to: LeaveStatusRejected},
}

func notStarted(r LeaveRequest, today time.Time) error {
	if DateOf(r.StartDate).After(DateOf(today)) {
		return nil
	}
	return &InvalidStateError{
		Status:  r.Status,
		Action:  ActionCancel,
		Message: "Cannot cancel leave that has already started. Please contact HR.",
	}
}

// NextStatus validates action against r's current status and returns the
// status r moves to.
func NextStatus(r LeaveRequest, action Action, today time.Time) (LeaveStatus, error) {
	t, ok := transitions[transitionKey{from: r.Status, action: action}]
	if !ok {
		return r.Status, &InvalidStateError{Status: r.Status, Action: action}
	}
	if t.guard != nil {
		if err := t.guard(r, today); err != nil {
			return r.Status, err
		}
	}
	return t.to, nil
}

// ActionForDecision maps an approver decision to its workflow action.
func ActionForDecision(status LeaveStatus) (Action, bool) {
	switch status {
	case LeaveStatusApproved:
		return ActionApprove, true
	case LeaveStatusRejected:
		return ActionReject, true
	default:
		return "", false
	}
}
