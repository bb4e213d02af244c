package leave

import (
	"io"
	"strings"
	"time"

	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/validator"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	// Leave type
	if validator.IsEmpty(r.LeaveType) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is required",
		})
	} else if !LeaveType(r.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is not a valid leave type",
		})
	}

	// Dates
	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "Leave end date must be after start date",
		})
	}

	// Reason
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Dates returns the parsed range. Call after Validate.
func (r *CreateLeaveRequest) Dates() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type UpdateLeaveRequest struct {
	LeaveType *string `json:"leave_type,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func (r *UpdateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.LeaveType != nil && !LeaveType(*r.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is not a valid leave type",
		})
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.Reason != nil && validator.IsEmpty(*r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateChanges records which fields an update actually modified.
type UpdateChanges struct {
	LeaveType bool
	StartDate bool
	EndDate   bool
	Reason    bool
}

func (c UpdateChanges) Any() bool {
	return c.LeaveType || c.StartDate || c.EndDate || c.Reason
}

// Apply merges the provided fields into current and reports what changed.
// Call after Validate.
func (r *UpdateLeaveRequest) Apply(current *LeaveRequest) UpdateChanges {
	var changes UpdateChanges

	if r.LeaveType != nil && LeaveType(*r.LeaveType) != current.LeaveType {
		current.LeaveType = LeaveType(*r.LeaveType)
		changes.LeaveType = true
	}

	start, end := current.StartDate, current.EndDate
	if r.StartDate != nil {
		if d, _ := validator.IsValidDate(*r.StartDate); !d.Equal(DateOf(start)) {
			start = d
			changes.StartDate = true
		}
	}
	if r.EndDate != nil {
		if d, _ := validator.IsValidDate(*r.EndDate); !d.Equal(DateOf(end)) {
			end = d
			changes.EndDate = true
		}
	}
	current.SetDates(start, end)

	if r.Reason != nil {
		reason := strings.TrimSpace(*r.Reason)
		if reason != current.Reason {
			current.Reason = reason
			changes.Reason = true
		}
	}

	return changes
}

// ValidateSchedule checks the date rules for a new start date: it may not
// lie before today and the end may not precede it.
func ValidateSchedule(start, end, today time.Time) error {
	var errs validator.ValidationErrors

	if DateOf(start).Before(DateOf(today)) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "Leave start date cannot be in the past",
		})
	}
	if verr, ok := endBeforeStart(start, end); ok {
		errs = append(errs, verr)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ValidateDateRange checks only that end does not precede start.
func ValidateDateRange(start, end time.Time) error {
	if verr, ok := endBeforeStart(start, end); ok {
		return validator.ValidationErrors{verr}
	}
	return nil
}

func endBeforeStart(start, end time.Time) (validator.ValidationError, bool) {
	if !DateOf(end).Before(DateOf(start)) {
		return validator.ValidationError{}, false
	}
	return validator.ValidationError{
		Field:   "end_date",
		Message: "Leave end date must be after start date",
	}, true
}

type DecisionRequest struct {
	Status   string  `json:"status"` // approved, rejected
	Comments *string `json:"comments,omitempty"`
}

func (r *DecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	status := LeaveStatus(r.Status)
	if _, ok := ActionForDecision(status); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: approved, rejected",
		})
	}
	if status == LeaveStatusRejected && r.TrimmedComments() == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "comments",
			Message: "Comments are required when rejecting a leave application",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// TrimmedComments returns the trimmed comments, or nil when blank.
func (r *DecisionRequest) TrimmedComments() *string {
	if r.Comments == nil {
		return nil
	}
	c := strings.TrimSpace(*r.Comments)
	if c == "" {
		return nil
	}
	return &c
}

// AttachmentUpload carries an uploaded file into the service layer.
type AttachmentUpload struct {
	File        io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// LeaveRequestFilter - list filters and pagination
type LeaveRequestFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	LeaveType *string `json:"leave_type,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting by created_at
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = DefaultPage
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !LeaveStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected, cancelled",
		})
	}
	if f.LeaveType != nil && !LeaveType(*f.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is not a valid leave type",
		})
	}

	if f.SortOrder == "" {
		f.SortOrder = "desc"
	}
	if f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must be one of: asc, desc",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttachmentResponse struct {
	ID               string    `json:"id"`
	LeaveID          string    `json:"leave_id"`
	FileName         string    `json:"file_name"`
	OriginalFileName string    `json:"original_file_name"`
	FileType         string    `json:"file_type"`
	FileURL          string    `json:"file_url"`
	FileSize         int64     `json:"file_size"`
	UploadedBy       string    `json:"uploaded_by"`
	UploadedByName   *string   `json:"uploaded_by_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type LeaveResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	UserName  *string `json:"user_name,omitempty"`
	UserEmail *string `json:"user_email,omitempty"`

	LeaveType     string `json:"leave_type"`
	LeaveTypeName string `json:"leave_type_name"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	TotalDays     int    `json:"total_days"`
	Reason        string `json:"reason"`

	Status           string     `json:"status"`
	StatusName       string     `json:"status_name"`
	ApprovedBy       *string    `json:"approved_by,omitempty"`
	ApprovedByName   *string    `json:"approved_by_name,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	ApprovalComments *string    `json:"approval_comments,omitempty"`

	Attachments []AttachmentResponse `json:"attachments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListLeaveRequestResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Showing    string          `json:"showing"`
	Leaves     []LeaveResponse `json:"leaves"`
}

type StatsResponse struct {
	UserID                *string        `json:"user_id,omitempty"`
	TotalLeaves           int            `json:"total_leaves"`
	PendingLeaves         int            `json:"pending_leaves"`
	ApprovedLeaves        int            `json:"approved_leaves"`
	RejectedLeaves        int            `json:"rejected_leaves"`
	LeavesByType          map[string]int `json:"leaves_by_type"`
	LeavesByStatus        map[string]int `json:"leaves_by_status"`
	RemainingAnnualLeaves *int           `json:"remaining_annual_leaves,omitempty"`
}

type BalanceResponse struct {
	UserID        string `json:"user_id"`
	LeaveType     string `json:"leave_type"`
	LeaveTypeName string `json:"leave_type_name"`
	Year          int    `json:"year"`
	Entitlement   int    `json:"entitlement"`
	Used          int    `json:"used"`
	Remaining     int    `json:"remaining"`
}

// NewAttachmentResponse maps an attachment entity to its projection.
func NewAttachmentResponse(a LeaveAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:               a.ID,
		LeaveID:          a.LeaveID,
		FileName:         a.FileName,
		OriginalFileName: a.OriginalFileName,
		FileType:         a.FileType,
		FileURL:          a.FileURL,
		FileSize:         a.FileSize,
		UploadedBy:       a.UploadedBy,
		UploadedByName:   a.UploadedByName,
		CreatedAt:        a.CreatedAt,
	}
}

// NewLeaveResponse maps a leave request and its attachments to the projection
// returned by every workflow operation.
func NewLeaveResponse(r LeaveRequest, attachments []LeaveAttachment) LeaveResponse {
	resp := LeaveResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		UserName:         r.UserName,
		UserEmail:        r.UserEmail,
		LeaveType:        string(r.LeaveType),
		LeaveTypeName:    r.LeaveType.Label(),
		StartDate:        r.StartDate.Format(DateLayout),
		EndDate:          r.EndDate.Format(DateLayout),
		TotalDays:        r.TotalDays,
		Reason:           r.Reason,
		Status:           string(r.Status),
		StatusName:       r.Status.Label(),
		ApprovedBy:       r.ApprovedBy,
		ApprovedByName:   r.ApprovedByName,
		ApprovedAt:       r.ApprovedAt,
		ApprovalComments: r.ApprovalComments,
		Attachments:      make([]AttachmentResponse, 0, len(attachments)),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	for _, a := range attachments {
		resp.Attachments = append(resp.Attachments, NewAttachmentResponse(a))
	}
	return resp
}
