package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
)

// OverlapValidator checks a proposed range against the user's blocking leaves.
type OverlapValidator struct {
	leaveRepo leave.LeaveRequestRepository
}

func NewOverlapValidator(leaveRepo leave.LeaveRequestRepository) *OverlapValidator {
	return &OverlapValidator{leaveRepo: leaveRepo}
}

// HasOverlap reports whether [start, end] intersects a pending or approved
// leave of userID. excludeLeaveID is skipped so an update can keep its dates.
func (v *OverlapValidator) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeLeaveID string) (bool, error) {
	existing, err := v.leaveRepo.ListBlockingByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to list leaves of user: %w", err)
	}
	return leave.AnyOverlap(existing, start, end, excludeLeaveID), nil
}
