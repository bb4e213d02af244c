package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
)

// EntitlementCalculator derives balances from the role table and approved
// leave history. Nothing is stored; every call reads current data.
type EntitlementCalculator struct {
	leaveRepo leave.LeaveRequestRepository
	directory user.Directory
}

func NewEntitlementCalculator(leaveRepo leave.LeaveRequestRepository, directory user.Directory) *EntitlementCalculator {
	return &EntitlementCalculator{
		leaveRepo: leaveRepo,
		directory: directory,
	}
}

// Balance returns entitlement, used and remaining days of userID for one
// leave type and calendar year.
func (c *EntitlementCalculator) Balance(ctx context.Context, userID string, leaveType leave.LeaveType, year int) (leave.Balance, error) {
	u, err := c.directory.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return leave.Balance{}, leave.ErrUserNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to get user: %w", err)
	}

	used, err := c.leaveRepo.SumApprovedDays(ctx, userID, leaveType, year)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to sum approved days: %w", err)
	}

	return leave.NewBalance(leave.Entitlement(u.Role, leaveType), used), nil
}

// RemainingDays is Balance reduced to the remaining days. Never negative.
func (c *EntitlementCalculator) RemainingDays(ctx context.Context, userID string, leaveType leave.LeaveType, year int) (int, error) {
	b, err := c.Balance(ctx, userID, leaveType, year)
	if err != nil {
		return 0, err
	}
	return b.Remaining, nil
}
