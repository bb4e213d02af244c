package leave

import (
	"bytes"
	"context"
	"io"
	"path"
	"sync"

	"github.com/google/uuid"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
)

type memoryDirectory struct {
	users map[string]user.User
}

func newMemoryDirectory(users ...user.User) *memoryDirectory {
	d := &memoryDirectory{users: make(map[string]user.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *memoryDirectory) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := d.users[id]
	if !ok || !u.IsActive {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (d *memoryDirectory) ListByRole(_ context.Context, role user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range d.users {
		if u.Role == role && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

// memoryLeaveRepo keeps leaves in insertion order.
type memoryLeaveRepo struct {
	mu        sync.Mutex
	order     []string
	leaves    map[string]leave.LeaveRequest
	directory *memoryDirectory
}

func newMemoryLeaveRepo(directory *memoryDirectory) *memoryLeaveRepo {
	return &memoryLeaveRepo{
		leaves:    make(map[string]leave.LeaveRequest),
		directory: directory,
	}
}

func (r *memoryLeaveRepo) withRelations(l leave.LeaveRequest) leave.LeaveRequest {
	if u, ok := r.directory.users[l.UserID]; ok {
		name, email, role := u.FullName(), u.Email, u.Role
		l.UserName, l.UserEmail, l.UserRole = &name, &email, &role
	}
	if l.ApprovedBy != nil {
		if a, ok := r.directory.users[*l.ApprovedBy]; ok {
			name := a.FullName()
			l.ApprovedByName = &name
		}
	}
	return l
}

func (r *memoryLeaveRepo) Create(_ context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = uuid.NewString()
	request.IsActive = true
	r.leaves[request.ID] = request
	r.order = append(r.order, request.ID)
	return request, nil
}

func (r *memoryLeaveRepo) GetByID(_ context.Context, id string) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[id]
	if !ok || !l.IsActive {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.withRelations(l), nil
}

func (r *memoryLeaveRepo) ListBlockingByUser(_ context.Context, userID string) ([]leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveRequest
	for _, id := range r.order {
		l := r.leaves[id]
		if l.UserID == userID && l.IsActive && l.Status.BlocksCalendar() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memoryLeaveRepo) SumApprovedDays(_ context.Context, userID string, leaveType leave.LeaveType, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, l := range r.leaves {
		if l.UserID == userID && l.IsActive && l.Status == leave.LeaveStatusApproved &&
			l.LeaveType == leaveType && l.StartDate.Year() == year {
			total += l.TotalDays
		}
	}
	return total, nil
}

func (r *memoryLeaveRepo) List(_ context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []leave.LeaveRequest
	for _, id := range r.order {
		l := r.leaves[id]
		if !l.IsActive {
			continue
		}
		if filter.UserID != nil && l.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && string(l.Status) != *filter.Status {
			continue
		}
		if filter.LeaveType != nil && string(l.LeaveType) != *filter.LeaveType {
			continue
		}
		matched = append(matched, r.withRelations(l))
	}
	if filter.SortOrder == "desc" {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memoryLeaveRepo) Update(_ context.Context, request leave.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[request.ID]
	if !ok || !l.IsActive {
		return leave.ErrLeaveRequestNotFound
	}
	request.UserName, request.UserEmail, request.UserRole, request.ApprovedByName = nil, nil, nil, nil
	r.leaves[request.ID] = request
	return nil
}

func (r *memoryLeaveRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[id]
	if !ok || !l.IsActive {
		return leave.ErrLeaveRequestNotFound
	}
	l.IsActive = false
	r.leaves[id] = l
	return nil
}

func (r *memoryLeaveRepo) Stats(_ context.Context, userID *string) (leave.LeaveStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats leave.LeaveStats
	for _, l := range r.leaves {
		if !l.IsActive || (userID != nil && l.UserID != *userID) {
			continue
		}
		stats.Add(l.LeaveType, l.Status, 1)
	}
	return stats, nil
}

// raw returns the stored row regardless of is_active.
func (r *memoryLeaveRepo) raw(id string) leave.LeaveRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaves[id]
}

type memoryAttachmentRepo struct {
	mu          sync.Mutex
	order       []string
	attachments map[string]leave.LeaveAttachment
	failCreate  error
}

func newMemoryAttachmentRepo() *memoryAttachmentRepo {
	return &memoryAttachmentRepo{attachments: make(map[string]leave.LeaveAttachment)}
}

func (r *memoryAttachmentRepo) Create(_ context.Context, a leave.LeaveAttachment) (leave.LeaveAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return leave.LeaveAttachment{}, r.failCreate
	}
	a.ID = uuid.NewString()
	a.IsActive = true
	r.attachments[a.ID] = a
	r.order = append(r.order, a.ID)
	return a, nil
}

func (r *memoryAttachmentRepo) GetByID(_ context.Context, id string) (leave.LeaveAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attachments[id]
	if !ok || !a.IsActive {
		return leave.LeaveAttachment{}, leave.ErrAttachmentNotFound
	}
	return a, nil
}

func (r *memoryAttachmentRepo) ListByLeave(_ context.Context, leaveID string) ([]leave.LeaveAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveAttachment
	for i := len(r.order) - 1; i >= 0; i-- {
		a := r.attachments[r.order[i]]
		if a.LeaveID == leaveID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryAttachmentRepo) ListByLeaveIDs(ctx context.Context, leaveIDs []string) (map[string][]leave.LeaveAttachment, error) {
	result := make(map[string][]leave.LeaveAttachment, len(leaveIDs))
	for _, id := range leaveIDs {
		attachments, _ := r.ListByLeave(ctx, id)
		if len(attachments) > 0 {
			result[id] = attachments
		}
	}
	return result, nil
}

func (r *memoryAttachmentRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attachments[id]
	if !ok || !a.IsActive {
		return leave.ErrAttachmentNotFound
	}
	a.IsActive = false
	r.attachments[id] = a
	return nil
}

func (r *memoryAttachmentRepo) SoftDeleteByLeave(_ context.Context, leaveID string) ([]leave.LeaveAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted []leave.LeaveAttachment
	for _, id := range r.order {
		a := r.attachments[id]
		if a.LeaveID == leaveID && a.IsActive {
			a.IsActive = false
			r.attachments[id] = a
			deleted = append(deleted, a)
		}
	}
	return deleted, nil
}

func (r *memoryAttachmentRepo) raw(id string) leave.LeaveAttachment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attachments[id]
}

// inlineTransactor runs the unit of work without isolation.
type inlineTransactor struct{}

func (inlineTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryFileService struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newMemoryFileService() *memoryFileService {
	return &memoryFileService{files: make(map[string][]byte)}
}

func (f *memoryFileService) Save(_ context.Context, r io.Reader, filename, _ string, folder string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	p := path.Join(folder, uuid.NewString()+path.Ext(filename))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[p] = buf.Bytes()
	return p, nil
}

func (f *memoryFileService) URL(_ context.Context, p string) (string, error) {
	return "/uploads/" + p, nil
}

func (f *memoryFileService) Delete(_ context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, p)
	f.deleted = append(f.deleted, p)
	return nil
}

func (f *memoryFileService) exists(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[p]
	return ok
}

type userDelivery struct {
	userID string
	event  notification.Event
}

type roleDelivery struct {
	role  user.Role
	event notification.Event
}

type recordingSink struct {
	mu    sync.Mutex
	users []userDelivery
	roles []roleDelivery
}

func (s *recordingSink) NotifyUser(_ context.Context, userID string, event notification.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, userDelivery{userID: userID, event: event})
}

func (s *recordingSink) NotifyRole(_ context.Context, role user.Role, event notification.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = append(s.roles, roleDelivery{role: role, event: event})
}
