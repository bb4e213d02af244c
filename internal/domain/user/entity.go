package user

import "time"

type Role string

const (
	RoleStaff   Role = "staff"   // Regular staff member
	RoleManager Role = "manager" // Project/team manager
	RoleAdmin   Role = "admin"   // System administrator, decides leave
	RoleHR      Role = "hr"      // Human resources, decides leave
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStaff, RoleManager, RoleAdmin, RoleHR:
		return true
	}
	return false
}

// IsApprover reports whether the role may decide leave requests and act on
// any subject's leave.
func (r Role) IsApprover() bool {
	return r == RoleAdmin || r == RoleHR
}

// ApproverRoles lists the roles that receive leave broadcasts.
func ApproverRoles() []Role {
	return []Role{RoleAdmin, RoleHR}
}

// User is the identity view the leave engine needs from the user directory.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns "First Last".
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
