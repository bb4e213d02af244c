package leave

import (
	"time"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
)

// LeaveType maps to leave_requests.leave_type
type LeaveType string

const (
	LeaveTypeAnnual      LeaveType = "annual"
	LeaveTypeSick        LeaveType = "sick"
	LeaveTypePersonal    LeaveType = "personal"
	LeaveTypeMaternity   LeaveType = "maternity"
	LeaveTypePaternity   LeaveType = "paternity"
	LeaveTypeEmergency   LeaveType = "emergency"
	LeaveTypeBereavement LeaveType = "bereavement"
	LeaveTypeStudy       LeaveType = "study"
)

var leaveTypeLabels = map[LeaveType]string{
	LeaveTypeAnnual:      "Annual Leave",
	LeaveTypeSick:        "Sick Leave",
	LeaveTypePersonal:    "Personal Leave",
	LeaveTypeMaternity:   "Maternity Leave",
	LeaveTypePaternity:   "Paternity Leave",
	LeaveTypeEmergency:   "Emergency Leave",
	LeaveTypeBereavement: "Bereavement Leave",
	LeaveTypeStudy:       "Study Leave",
}

// AllLeaveTypes returns every leave type in display order.
func AllLeaveTypes() []LeaveType {
	return []LeaveType{
		LeaveTypeAnnual,
		LeaveTypeSick,
		LeaveTypePersonal,
		LeaveTypeMaternity,
		LeaveTypePaternity,
		LeaveTypeEmergency,
		LeaveTypeBereavement,
		LeaveTypeStudy,
	}
}

func (t LeaveType) IsValid() bool {
	_, ok := leaveTypeLabels[t]
	return ok
}

// Label returns the display string, e.g. "Annual Leave".
func (t LeaveType) Label() string {
	if label, ok := leaveTypeLabels[t]; ok {
		return label
	}
	return "Unknown"
}

// LeaveStatus maps to leave_requests.status
type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusRejected  LeaveStatus = "rejected"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

var leaveStatusLabels = map[LeaveStatus]string{
	LeaveStatusPending:   "Pending",
	LeaveStatusApproved:  "Approved",
	LeaveStatusRejected:  "Rejected",
	LeaveStatusCancelled: "Cancelled",
}

// AllLeaveStatuses returns every status in lifecycle order.
func AllLeaveStatuses() []LeaveStatus {
	return []LeaveStatus{
		LeaveStatusPending,
		LeaveStatusApproved,
		LeaveStatusRejected,
		LeaveStatusCancelled,
	}
}

func (s LeaveStatus) IsValid() bool {
	_, ok := leaveStatusLabels[s]
	return ok
}

func (s LeaveStatus) Label() string {
	if label, ok := leaveStatusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// BlocksCalendar reports whether a leave in this status occupies its dates.
func (s LeaveStatus) BlocksCalendar() bool {
	return s == LeaveStatusPending || s == LeaveStatusApproved
}

// LeaveRequest entity
type LeaveRequest struct {
	ID        string
	UserID    string
	LeaveType LeaveType

	StartDate time.Time
	EndDate   time.Time
	TotalDays int

	Reason string

	Status           LeaveStatus
	ApprovedBy       *string
	ApprovedAt       *time.Time
	ApprovalComments *string

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	UserName       *string
	UserEmail      *string
	UserRole       *user.Role
	ApprovedByName *string
}

// SetDates normalises both dates to calendar days and recomputes TotalDays.
func (r *LeaveRequest) SetDates(start, end time.Time) {
	r.StartDate = DateOf(start)
	r.EndDate = DateOf(end)
	r.TotalDays = TotalDays(r.StartDate, r.EndDate)
}

// Decide records an approver decision. ApprovedBy and ApprovedAt are always
// written together.
func (r *LeaveRequest) Decide(status LeaveStatus, approverID string, at time.Time, comments *string) {
	r.Status = status
	r.ApprovedBy = &approverID
	r.ApprovedAt = &at
	r.ApprovalComments = comments
	r.UpdatedAt = at
}

// Range returns the inclusive date range of the request.
func (r LeaveRequest) Range() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// LeaveAttachment entity
type LeaveAttachment struct {
	ID               string
	LeaveID          string
	FileName         string
	OriginalFileName string
	FileType         string
	FilePath         string
	FileURL          string
	FileSize         int64
	UploadedBy       string
	IsActive         bool
	CreatedAt        time.Time

	UploadedByName *string
}

// LeaveStats aggregates leave counts for a user or for everyone.
type LeaveStats struct {
	TotalLeaves    int
	PendingLeaves  int
	ApprovedLeaves int
	RejectedLeaves int
	ByType         map[LeaveType]int
	ByStatus       map[LeaveStatus]int
}

// Add folds count leaves of one type and status into the totals.
func (s *LeaveStats) Add(leaveType LeaveType, status LeaveStatus, count int) {
	if s.ByType == nil {
		s.ByType = make(map[LeaveType]int)
	}
	if s.ByStatus == nil {
		s.ByStatus = make(map[LeaveStatus]int)
	}

	s.TotalLeaves += count
	s.ByType[leaveType] += count
	s.ByStatus[status] += count

	switch status {
	case LeaveStatusPending:
		s.PendingLeaves += count
	case LeaveStatusApproved:
		s.ApprovedLeaves += count
	case LeaveStatusRejected:
		s.RejectedLeaves += count
	}
}
