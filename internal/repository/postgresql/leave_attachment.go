package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/database"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/validator"
)

const visibleAttachment = "la.is_active = TRUE"

const attachmentSelect = `
	SELECT la.id, la.leave_id, la.file_name, la.original_file_name, la.file_type,
		   la.file_path, la.file_url, la.file_size, la.uploaded_by, la.is_active, la.created_at,
		   btrim(u.first_name || ' ' || u.last_name) AS uploaded_by_name
	FROM leave_attachments la
	JOIN users u ON u.id = la.uploaded_by
`

type attachmentRepositoryImpl struct {
	db *database.DB
}

func NewAttachmentRepository(db *database.DB) leave.AttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

func scanAttachment(row pgx.Row) (leave.LeaveAttachment, error) {
	var a leave.LeaveAttachment
	var uploadedByName string

	err := row.Scan(
		&a.ID, &a.LeaveID, &a.FileName, &a.OriginalFileName, &a.FileType,
		&a.FilePath, &a.FileURL, &a.FileSize, &a.UploadedBy, &a.IsActive, &a.CreatedAt,
		&uploadedByName,
	)
	if err != nil {
		return leave.LeaveAttachment{}, err
	}

	a.UploadedByName = &uploadedByName
	return a, nil
}

func collectAttachments(rows pgx.Rows) ([]leave.LeaveAttachment, error) {
	defer rows.Close()

	var attachments []leave.LeaveAttachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return attachments, nil
}

func (r *attachmentRepositoryImpl) Create(ctx context.Context, a leave.LeaveAttachment) (leave.LeaveAttachment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_attachments (
			leave_id, file_name, original_file_name, file_type,
			file_path, file_url, file_size, uploaded_by, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		a.LeaveID, a.FileName, a.OriginalFileName, a.FileType,
		a.FilePath, a.FileURL, a.FileSize, a.UploadedBy, a.CreatedAt,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return leave.LeaveAttachment{}, fmt.Errorf("failed to create attachment: %w", err)
	}

	a.IsActive = true
	return a, nil
}

func (r *attachmentRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveAttachment, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveAttachment{}, leave.ErrAttachmentNotFound
	}

	q := GetQuerier(ctx, r.db)

	query := attachmentSelect + " WHERE la.id = $1 AND " + visibleAttachment

	a, err := scanAttachment(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveAttachment{}, leave.ErrAttachmentNotFound
		}
		return leave.LeaveAttachment{}, fmt.Errorf("failed to get attachment %s: %w", id, err)
	}

	return a, nil
}

func (r *attachmentRepositoryImpl) ListByLeave(ctx context.Context, leaveID string) ([]leave.LeaveAttachment, error) {
	q := GetQuerier(ctx, r.db)

	query := attachmentSelect + " WHERE la.leave_id = $1 AND " + visibleAttachment +
		" ORDER BY la.created_at DESC"

	rows, err := q.Query(ctx, query, leaveID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}

	return collectAttachments(rows)
}

func (r *attachmentRepositoryImpl) ListByLeaveIDs(ctx context.Context, leaveIDs []string) (map[string][]leave.LeaveAttachment, error) {
	result := make(map[string][]leave.LeaveAttachment, len(leaveIDs))
	if len(leaveIDs) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, r.db)

	query := attachmentSelect + " WHERE la.leave_id = ANY($1::uuid[]) AND " + visibleAttachment +
		" ORDER BY la.created_at DESC"

	rows, err := q.Query(ctx, query, leaveIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}

	attachments, err := collectAttachments(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range attachments {
		result[a.LeaveID] = append(result[a.LeaveID], a)
	}

	return result, nil
}

func (r *attachmentRepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := "UPDATE leave_attachments la SET is_active = FALSE WHERE la.id = $1 AND " + visibleAttachment

	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return leave.ErrAttachmentNotFound
	}

	return nil
}

func (r *attachmentRepositoryImpl) SoftDeleteByLeave(ctx context.Context, leaveID string) ([]leave.LeaveAttachment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_attachments la
		SET is_active = FALSE
		WHERE la.leave_id = $1 AND ` + visibleAttachment + `
		RETURNING la.id, la.leave_id, la.file_name, la.original_file_name, la.file_type,
				  la.file_path, la.file_url, la.file_size, la.uploaded_by, la.is_active, la.created_at
	`

	rows, err := q.Query(ctx, query, leaveID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete attachments of leave %s: %w", leaveID, err)
	}
	defer rows.Close()

	var deleted []leave.LeaveAttachment
	for rows.Next() {
		var a leave.LeaveAttachment
		if err := rows.Scan(
			&a.ID, &a.LeaveID, &a.FileName, &a.OriginalFileName, &a.FileType,
			&a.FilePath, &a.FileURL, &a.FileSize, &a.UploadedBy, &a.IsActive, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		deleted = append(deleted, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return deleted, nil
}
