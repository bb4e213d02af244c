package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
)

// access answers authorization questions from the user directory. Roles are
// looked up on every call.
type access struct {
	directory user.Directory
}

func (a access) user(ctx context.Context, id string) (user.User, error) {
	u, err := a.directory.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, leave.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// isApprover treats an unknown user as unprivileged.
func (a access) isApprover(ctx context.Context, id string) (bool, error) {
	u, err := a.user(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.Role.IsApprover(), nil
}

func (a access) requireApprover(ctx context.Context, id string) (user.User, error) {
	u, err := a.user(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrUserNotFound) {
			return user.User{}, leave.ErrNotApprover
		}
		return user.User{}, err
	}
	if !u.Role.IsApprover() {
		return user.User{}, leave.ErrNotApprover
	}
	return u, nil
}

// canAccess lets the subject and approvers through.
func (a access) canAccess(ctx context.Context, actorID string, r leave.LeaveRequest) error {
	if r.UserID == actorID {
		return nil
	}
	ok, err := a.isApprover(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return leave.ErrLeaveAccess
	}
	return nil
}

func requireOwner(actorID string, r leave.LeaveRequest) error {
	if r.UserID != actorID {
		return leave.ErrNotLeaveOwner
	}
	return nil
}
