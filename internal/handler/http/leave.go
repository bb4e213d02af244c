package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/handler/http/response"
)

// multipart bodies above this spill to temp files
const maxUploadMemory = 10 << 20

type LeaveHandler interface {
	// Workflow
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)

	// Reads
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	Balance(w http.ResponseWriter, r *http.Request)

	// Attachments
	UploadAttachment(w http.ResponseWriter, r *http.Request)
	ListAttachments(w http.ResponseWriter, r *http.Request)
	DeleteAttachment(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
	}
}

// parseLeaveFilter reads pagination, sorting and filter params from the query.
func parseLeaveFilter(r *http.Request) leave.LeaveRequestFilter {
	query := r.URL.Query()
	filter := leave.LeaveRequestFilter{
		Page:      getIntQueryParam(r, "page", 0),
		Limit:     getIntQueryParam(r, "limit", 0),
		SortOrder: query.Get("sort_order"),
	}

	if v := query.Get("user_id"); v != "" {
		filter.UserID = &v
	}
	if v := query.Get("leave_type"); v != "" {
		filter.LeaveType = &v
	}
	if v := query.Get("status"); v != "" {
		filter.Status = &v
	}

	return filter
}

// Create implements LeaveHandler.
func (l *LeaveHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "Create leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := l.leaveService.Create(r.Context(), userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave application submitted successfully", result)
}

// Update implements LeaveHandler.
func (l *LeaveHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.UpdateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "Update leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := l.leaveService.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application updated successfully", result)
}

// Cancel implements LeaveHandler.
func (l *LeaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := l.leaveService.Cancel(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application cancelled successfully", result)
}

// Delete implements LeaveHandler.
func (l *LeaveHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if err := l.leaveService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application deleted successfully", nil)
}

// Decide implements LeaveHandler.
func (l *LeaveHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	approverID := getUserIDFromContext(r)
	if approverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "Decide leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := l.leaveService.Decide(r.Context(), approverID, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application "+result.Status+" successfully", result)
}

// Get implements LeaveHandler.
func (l *LeaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := l.leaveService.GetByID(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements LeaveHandler. A status param narrows the listing to that
// status.
func (l *LeaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	filter := parseLeaveFilter(r)

	var (
		result leave.ListLeaveRequestResponse
		err    error
	)
	if filter.Status != nil {
		status := leave.LeaveStatus(*filter.Status)
		result, err = l.leaveService.ListByStatus(r.Context(), userID, status, filter)
	} else {
		result, err = l.leaveService.ListAll(r.Context(), userID, filter)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListMine implements LeaveHandler.
func (l *LeaveHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := l.leaveService.ListMine(r.Context(), userID, parseLeaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListPending implements LeaveHandler.
func (l *LeaveHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := l.leaveService.ListPending(r.Context(), userID, parseLeaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stats implements LeaveHandler.
func (l *LeaveHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var target *string
	if v := r.URL.Query().Get("user_id"); v != "" {
		target = &v
	}

	result, err := l.leaveService.Stats(r.Context(), userID, target)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Balance implements LeaveHandler.
func (l *LeaveHandlerImpl) Balance(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	year := 0
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "year must be a number", nil)
			return
		}
		year = parsed
	}

	leaveType := leave.LeaveType(chi.URLParam(r, "leaveType"))
	result, err := l.leaveService.RemainingDays(r.Context(), userID, leaveType, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UploadAttachment implements LeaveHandler.
func (l *LeaveHandlerImpl) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		slog.ErrorContext(r.Context(), "Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	upload := leave.AttachmentUpload{}
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// the service reports the missing file as a validation error
	case err != nil:
		slog.ErrorContext(r.Context(), "Failed to read uploaded file", "error", err)
		response.BadRequest(w, "Failed to read uploaded file", nil)
		return
	default:
		defer file.Close()
		upload = leave.AttachmentUpload{
			File:        file,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		}
	}

	result, err := l.leaveService.UploadAttachment(r.Context(), userID, chi.URLParam(r, "id"), upload)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attachment uploaded successfully", result)
}

// ListAttachments implements LeaveHandler.
func (l *LeaveHandlerImpl) ListAttachments(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := l.leaveService.ListAttachments(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DeleteAttachment implements LeaveHandler.
func (l *LeaveHandlerImpl) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	err := l.leaveService.DeleteAttachment(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "attachmentID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attachment deleted successfully", nil)
}
