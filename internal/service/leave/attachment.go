package leave

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/metrics"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/validator"
	"github.com/teamdesk/teamdesk-backend-go/internal/service/file"
)

const (
	attachmentFolder = "leaves"

	// MaxAttachmentSize is the largest accepted upload, 5 MiB.
	MaxAttachmentSize int64 = 5 << 20
)

var allowedAttachmentExtensions = []string{"pdf", "doc", "docx", "jpg", "jpeg", "png"}

// AttachmentManager stores evidence files for leave requests.
type AttachmentManager struct {
	leaveRepo   leave.LeaveRequestRepository
	attachRepo  leave.AttachmentRepository
	fileService file.FileService
	access      access
	now         func() time.Time
}

func newAttachmentManager(
	leaveRepo leave.LeaveRequestRepository,
	attachRepo leave.AttachmentRepository,
	fileService file.FileService,
	access access,
	now func() time.Time,
) *AttachmentManager {
	return &AttachmentManager{
		leaveRepo:   leaveRepo,
		attachRepo:  attachRepo,
		fileService: fileService,
		access:      access,
		now:         now,
	}
}

func validateUpload(upload leave.AttachmentUpload) error {
	var errs validator.ValidationErrors

	if upload.File == nil || validator.IsEmpty(upload.FileName) {
		return validator.Single("file", "file is required")
	}

	if !validator.IsInSlice(validator.FileExtension(upload.FileName), allowedAttachmentExtensions) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "File type not allowed. Allowed types: " + strings.Join(allowedAttachmentExtensions, ", "),
		})
	}
	if upload.Size > MaxAttachmentSize {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "File size cannot exceed 5MB",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// countingReader records how many bytes were read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Upload validates and stores a file, then records it against the leave.
func (m *AttachmentManager) Upload(ctx context.Context, leaveID string, upload leave.AttachmentUpload, uploaderID string) (leave.LeaveAttachment, error) {
	r, err := m.leaveRepo.GetByID(ctx, leaveID)
	if err != nil {
		return leave.LeaveAttachment{}, err
	}
	if err := m.access.canAccess(ctx, uploaderID, r); err != nil {
		return leave.LeaveAttachment{}, err
	}
	if err := validateUpload(upload); err != nil {
		return leave.LeaveAttachment{}, err
	}

	contentType := upload.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(upload.FileName)); byExt != "" {
			contentType = byExt
		} else {
			contentType = "application/octet-stream"
		}
	}

	// The declared size can be missing or wrong, so cap what is read.
	counter := &countingReader{r: io.LimitReader(upload.File, MaxAttachmentSize+1)}
	storedPath, err := m.fileService.Save(ctx, counter, upload.FileName, contentType, attachmentFolder)
	if err != nil {
		return leave.LeaveAttachment{}, fmt.Errorf("failed to store attachment: %w", err)
	}
	if counter.n > MaxAttachmentSize {
		m.removeFile(ctx, storedPath)
		return leave.LeaveAttachment{}, validator.Single("file", "File size cannot exceed 5MB")
	}

	url, err := m.fileService.URL(ctx, storedPath)
	if err != nil {
		m.removeFile(ctx, storedPath)
		return leave.LeaveAttachment{}, fmt.Errorf("failed to resolve attachment url: %w", err)
	}

	attachment, err := m.attachRepo.Create(ctx, leave.LeaveAttachment{
		LeaveID:          r.ID,
		FileName:         path.Base(storedPath),
		OriginalFileName: filepath.Base(upload.FileName),
		FileType:         contentType,
		FilePath:         storedPath,
		FileURL:          url,
		FileSize:         counter.n,
		UploadedBy:       uploaderID,
		CreatedAt:        m.now(),
	})
	if err != nil {
		m.removeFile(ctx, storedPath)
		return leave.LeaveAttachment{}, err
	}

	metrics.AttachmentBytes.Observe(float64(counter.n))
	return attachment, nil
}

// Delete soft-deletes the attachment row and then tries to remove the file.
func (m *AttachmentManager) Delete(ctx context.Context, leaveID, attachmentID, actorID string) error {
	r, err := m.leaveRepo.GetByID(ctx, leaveID)
	if err != nil {
		return err
	}
	if err := m.access.canAccess(ctx, actorID, r); err != nil {
		return err
	}

	a, err := m.attachRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	if a.LeaveID != r.ID {
		return leave.ErrAttachmentNotFound
	}

	if err := m.attachRepo.SoftDelete(ctx, a.ID); err != nil {
		return err
	}
	m.removeFile(ctx, a.FilePath)

	return nil
}

// List returns the active attachments of a leave, newest first.
func (m *AttachmentManager) List(ctx context.Context, leaveID, actorID string) ([]leave.LeaveAttachment, error) {
	r, err := m.leaveRepo.GetByID(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if err := m.access.canAccess(ctx, actorID, r); err != nil {
		return nil, err
	}

	return m.attachRepo.ListByLeave(ctx, r.ID)
}

func (m *AttachmentManager) removeFile(ctx context.Context, p string) {
	if p == "" {
		return
	}
	if err := m.fileService.Delete(ctx, p); err != nil {
		slog.WarnContext(ctx, "failed to delete attachment file", "path", p, "error", err)
	}
}
