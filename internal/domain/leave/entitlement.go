package leave

import "github.com/teamdesk/teamdesk-backend-go/internal/domain/user"

// Entitlement returns the yearly allowance in days for a role and leave type.
func Entitlement(role user.Role, leaveType LeaveType) int {
	switch leaveType {
	case LeaveTypeAnnual:
		switch {
		case role.IsApprover():
			return 25
		case role == user.RoleManager:
			return 23
		default:
			return 21
		}
	case LeaveTypeSick:
		return 10
	case LeaveTypePersonal:
		if role.IsApprover() || role == user.RoleManager {
			return 7
		}
		return 5
	default:
		return 0
	}
}

// Remaining floors entitlement minus used at zero.
func Remaining(entitlement, used int) int {
	if used >= entitlement {
		return 0
	}
	return entitlement - used
}

// BalancePolicy selects the leave types whose balance is enforced when a
// request is created or updated.
type BalancePolicy struct {
	EnforcedTypes []LeaveType
}

// DefaultBalancePolicy enforces the annual balance only.
func DefaultBalancePolicy() BalancePolicy {
	return BalancePolicy{EnforcedTypes: []LeaveType{LeaveTypeAnnual}}
}

func (p BalancePolicy) Enforces(t LeaveType) bool {
	for _, et := range p.EnforcedTypes {
		if et == t {
			return true
		}
	}
	return false
}

// Balance is a user's position for one leave type and year.
type Balance struct {
	Entitlement int
	Used        int
	Remaining   int
}

// NewBalance derives the remaining days from entitlement and usage.
func NewBalance(entitlement, used int) Balance {
	return Balance{Entitlement: entitlement, Used: used, Remaining: Remaining(entitlement, used)}
}
