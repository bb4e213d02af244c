package leave

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
)

func TestEntitlement_Table(t *testing.T) {
	tests := []struct {
		role      user.Role
		leaveType LeaveType
		want      int
	}{
		{user.RoleAdmin, LeaveTypeAnnual, 25},
		{user.RoleHR, LeaveTypeAnnual, 25},
		{user.RoleManager, LeaveTypeAnnual, 23},
		{user.RoleStaff, LeaveTypeAnnual, 21},
		{user.RoleAdmin, LeaveTypeSick, 10},
		{user.RoleManager, LeaveTypeSick, 10},
		{user.RoleStaff, LeaveTypeSick, 10},
		{user.RoleHR, LeaveTypePersonal, 7},
		{user.RoleManager, LeaveTypePersonal, 7},
		{user.RoleStaff, LeaveTypePersonal, 5},
		{user.RoleAdmin, LeaveTypeMaternity, 0},
		{user.RoleStaff, LeaveTypeStudy, 0},
		{user.RoleStaff, LeaveTypeEmergency, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.leaveType), func(t *testing.T) {
			assert.Equal(t, tt.want, Entitlement(tt.role, tt.leaveType))
		})
	}
}

func TestRemaining_NeverNegative(t *testing.T) {
	for used := 0; used <= 40; used++ {
		for _, entitlement := range []int{0, 5, 21, 25} {
			got := Remaining(entitlement, used)
			assert.GreaterOrEqual(t, got, 0)
			if used <= entitlement {
				assert.Equal(t, entitlement-used, got)
			}
		}
	}
}

func TestBalancePolicy_Enforces(t *testing.T) {
	p := DefaultBalancePolicy()
	assert.True(t, p.Enforces(LeaveTypeAnnual))
	assert.False(t, p.Enforces(LeaveTypeSick))

	p = BalancePolicy{EnforcedTypes: []LeaveType{LeaveTypeAnnual, LeaveTypeSick}}
	assert.True(t, p.Enforces(LeaveTypeSick))
	assert.False(t, p.Enforces(LeaveTypePersonal))
}
