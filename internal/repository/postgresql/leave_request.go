package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/database"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/validator"
)

// visibleLeave is the single visibility predicate applied to every leave read.
const visibleLeave = "lr.is_active = TRUE"

const leaveSelectColumns = `
	lr.id, lr.user_id, lr.leave_type,
	lr.start_date, lr.end_date, lr.total_days,
	lr.reason, lr.status,
	lr.approved_by, lr.approved_at, lr.approval_comments,
	lr.is_active, lr.created_at, lr.updated_at,
	btrim(u.first_name || ' ' || u.last_name) AS user_name, u.email, u.role,
	CASE WHEN a.id IS NULL THEN NULL ELSE btrim(a.first_name || ' ' || a.last_name) END AS approved_by_name
`

const leaveFromJoins = `
	FROM leave_requests lr
	JOIN users u ON u.id = lr.user_id
	LEFT JOIN users a ON a.id = lr.approved_by
`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var (
		req       leave.LeaveRequest
		leaveType string
		status    string
		userName  string
		userEmail string
		userRole  string
	)

	err := row.Scan(
		&req.ID, &req.UserID, &leaveType,
		&req.StartDate, &req.EndDate, &req.TotalDays,
		&req.Reason, &status,
		&req.ApprovedBy, &req.ApprovedAt, &req.ApprovalComments,
		&req.IsActive, &req.CreatedAt, &req.UpdatedAt,
		&userName, &userEmail, &userRole,
		&req.ApprovedByName,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	req.LeaveType = leave.LeaveType(leaveType)
	req.Status = leave.LeaveStatus(status)
	req.UserName = &userName
	req.UserEmail = &userEmail
	role := user.Role(userRole)
	req.UserRole = &role

	return req, nil
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.LeaveRequest, error) {
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return requests, nil
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			user_id, leave_type,
			start_date, end_date, total_days,
			reason, status, is_active,
			created_at, updated_at
		) VALUES (
			$1, $2,
			$3, $4, $5,
			$6, $7, TRUE,
			$8, $8
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.UserID, string(request.LeaveType),
		request.StartDate, request.EndDate, request.TotalDays,
		request.Reason, string(request.Status),
		request.CreatedAt,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	request.IsActive = true
	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	// id is compared against a UUID column; anything else cannot match a row.
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}

	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveSelectColumns + leaveFromJoins +
		" WHERE lr.id = $1 AND " + visibleLeave

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request %s: %w", id, err)
	}

	return req, nil
}

func (r *leaveRequestRepositoryImpl) ListBlockingByUser(ctx context.Context, userID string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveSelectColumns + leaveFromJoins + `
		WHERE lr.user_id = $1
		AND lr.status IN ('pending', 'approved')
		AND ` + visibleLeave + `
		ORDER BY lr.start_date
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocking leaves: %w", err)
	}

	return collectLeaveRequests(rows)
}

func (r *leaveRequestRepositoryImpl) SumApprovedDays(ctx context.Context, userID string, leaveType leave.LeaveType, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(lr.total_days), 0)
		FROM leave_requests lr
		WHERE lr.user_id = $1
		AND lr.leave_type = $2
		AND lr.status = 'approved'
		AND lr.start_date >= make_date($3, 1, 1)
		AND lr.start_date < make_date($3 + 1, 1, 1)
		AND ` + visibleLeave

	var used int
	if err := q.QueryRow(ctx, query, userID, string(leaveType), year).Scan(&used); err != nil {
		return 0, fmt.Errorf("failed to sum approved days: %w", err)
	}

	return used, nil
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{visibleLeave}
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil && *filter.UserID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.user_id = $%d", argIdx))
		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.LeaveType != nil && *filter.LeaveType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.leave_type = $%d", argIdx))
		args = append(args, *filter.LeaveType)
		argIdx++
	}

	whereClause := " WHERE " + strings.Join(whereClauses, " AND ")

	// COUNT query for total records
	var total int64
	countQuery := "SELECT COUNT(*) FROM leave_requests lr" + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	orderBy := "lr.created_at DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		orderBy = "lr.created_at ASC"
	}

	limit := filter.Limit
	if limit == 0 {
		limit = leave.DefaultLimit
	}
	page := filter.Page
	if page == 0 {
		page = leave.DefaultPage
	}
	offset := (page - 1) * limit

	selectQuery := "SELECT " + leaveSelectColumns + leaveFromJoins + whereClause +
		" ORDER BY " + orderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave requests: %w", err)
	}

	requests, err := collectLeaveRequests(rows)
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests lr
		SET leave_type = $1,
			start_date = $2,
			end_date = $3,
			total_days = $4,
			reason = $5,
			status = $6,
			approved_by = $7,
			approved_at = $8,
			approval_comments = $9,
			updated_at = $10
		WHERE lr.id = $11 AND ` + visibleLeave

	commandTag, err := q.Exec(ctx, query,
		string(request.LeaveType),
		request.StartDate,
		request.EndDate,
		request.TotalDays,
		request.Reason,
		string(request.Status),
		request.ApprovedBy,
		request.ApprovedAt,
		request.ApprovalComments,
		request.UpdatedAt,
		request.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request with id %s: %w", request.ID, err)
	}
	if commandTag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}

	return nil
}

func (r *leaveRequestRepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests lr
		SET is_active = FALSE, updated_at = NOW()
		WHERE lr.id = $1 AND ` + visibleLeave

	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave request with id %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}

	return nil
}

func (r *leaveRequestRepositoryImpl) Stats(ctx context.Context, userID *string) (leave.LeaveStats, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := " WHERE " + visibleLeave
	args := []interface{}{}
	if userID != nil {
		whereClause += " AND lr.user_id = $1"
		args = append(args, *userID)
	}

	query := "SELECT lr.leave_type, lr.status, COUNT(*) FROM leave_requests lr" +
		whereClause + " GROUP BY lr.leave_type, lr.status"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return leave.LeaveStats{}, fmt.Errorf("failed to query leave stats: %w", err)
	}
	defer rows.Close()

	stats := leave.LeaveStats{
		ByType:   make(map[leave.LeaveType]int),
		ByStatus: make(map[leave.LeaveStatus]int),
	}
	for rows.Next() {
		var leaveType, status string
		var count int
		if err := rows.Scan(&leaveType, &status, &count); err != nil {
			return leave.LeaveStats{}, fmt.Errorf("failed to scan leave stats: %w", err)
		}
		stats.Add(leave.LeaveType(leaveType), leave.LeaveStatus(status), count)
	}

	if err := rows.Err(); err != nil {
		return leave.LeaveStats{}, fmt.Errorf("rows iteration error: %w", err)
	}

	return stats, nil
}
