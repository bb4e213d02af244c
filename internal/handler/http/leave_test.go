package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
	"github.com/teamdesk/teamdesk-backend-go/internal/handler/http/response"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/jwt"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	handlerStaffID    = "0190a5c2-0000-7000-8000-000000000001"
	handlerHRID       = "0190a5c2-0000-7000-8000-000000000002"
	handlerLeaveID    = "0190a5c2-0000-7000-8000-0000000000aa"
)

type mockLeaveService struct {
	mock.Mock
}

func (m *mockLeaveService) Create(ctx context.Context, userID string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(leave.LeaveResponse), args.Error(1)
}

func (m *mockLeaveService) Update(ctx context.Context, userID, leaveID string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error) {
	args := m.Called(ctx, userID, leaveID, req)
	return args.Get(0).(leave.LeaveResponse), args.Error(1)
}

func (m *mockLeaveService) Cancel(ctx context.Context, userID, leaveID string) (leave.LeaveResponse, error) {
	args := m.Called(ctx, userID, leaveID)
	return args.Get(0).(leave.LeaveResponse), args.Error(1)
}

func (m *mockLeaveService) Delete(ctx context.Context, userID, leaveID string) error {
	return m.Called(ctx, userID, leaveID).Error(0)
}

func (m *mockLeaveService) Decide(ctx context.Context, approverID, leaveID string, req leave.DecisionRequest) (leave.LeaveResponse, error) {
	args := m.Called(ctx, approverID, leaveID, req)
	return args.Get(0).(leave.LeaveResponse), args.Error(1)
}

func (m *mockLeaveService) GetByID(ctx context.Context, actorID, leaveID string) (leave.LeaveResponse, error) {
	args := m.Called(ctx, actorID, leaveID)
	return args.Get(0).(leave.LeaveResponse), args.Error(1)
}

func (m *mockLeaveService) ListMine(ctx context.Context, userID string, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(leave.ListLeaveRequestResponse), args.Error(1)
}

func (m *mockLeaveService) ListAll(ctx context.Context, actorID string, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	args := m.Called(ctx, actorID, filter)
	return args.Get(0).(leave.ListLeaveRequestResponse), args.Error(1)
}

func (m *mockLeaveService) ListPending(ctx context.Context, actorID string, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	args := m.Called(ctx, actorID, filter)
	return args.Get(0).(leave.ListLeaveRequestResponse), args.Error(1)
}

func (m *mockLeaveService) ListByStatus(ctx context.Context, actorID string, status leave.LeaveStatus, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	args := m.Called(ctx, actorID, status, filter)
	return args.Get(0).(leave.ListLeaveRequestResponse), args.Error(1)
}

func (m *mockLeaveService) Stats(ctx context.Context, actorID string, targetUserID *string) (leave.StatsResponse, error) {
	args := m.Called(ctx, actorID, targetUserID)
	return args.Get(0).(leave.StatsResponse), args.Error(1)
}

func (m *mockLeaveService) RemainingDays(ctx context.Context, userID string, leaveType leave.LeaveType, year int) (leave.BalanceResponse, error) {
	args := m.Called(ctx, userID, leaveType, year)
	return args.Get(0).(leave.BalanceResponse), args.Error(1)
}

func (m *mockLeaveService) UploadAttachment(ctx context.Context, actorID, leaveID string, file leave.AttachmentUpload) (leave.AttachmentResponse, error) {
	args := m.Called(ctx, actorID, leaveID, file)
	return args.Get(0).(leave.AttachmentResponse), args.Error(1)
}

func (m *mockLeaveService) DeleteAttachment(ctx context.Context, actorID, leaveID, attachmentID string) error {
	return m.Called(ctx, actorID, leaveID, attachmentID).Error(0)
}

func (m *mockLeaveService) ListAttachments(ctx context.Context, actorID, leaveID string) ([]leave.AttachmentResponse, error) {
	args := m.Called(ctx, actorID, leaveID)
	return args.Get(0).([]leave.AttachmentResponse), args.Error(1)
}

// stubNotificationService only backs routes that never reach the service.
type stubNotificationService struct {
	notification.Service
}

type handlerFixture struct {
	jwt    jwt.Service
	leaves *mockLeaveService
	router *chi.Mux
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	leaves := new(mockLeaveService)
	t.Cleanup(func() { leaves.AssertExpectations(t) })

	router := NewRouter(
		RouterConfig{Env: "test", FrontendURL: "http://localhost:3000"},
		jwtService,
		NewLeaveHandler(leaves),
		NewNotificationHandler(stubNotificationService{}, jwtService),
	)

	return &handlerFixture{jwt: jwtService, leaves: leaves, router: router}
}

func (f *handlerFixture) token(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(userID, userID+"@teamdesk.test", role)
	require.NoError(t, err)
	return token
}

func (f *handlerFixture) do(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body response.Response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLeaveHandler_Create_RequiresToken(t *testing.T) {
	f := newHandlerFixture(t)

	rec, body := f.do(t, jsonRequest(t, http.MethodPost, "/api/v1/leaves", leave.CreateLeaveRequest{}), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, body.Success)
}

func TestLeaveHandler_Create_UsesCallerFromToken(t *testing.T) {
	f := newHandlerFixture(t)
	req := leave.CreateLeaveRequest{
		LeaveType: "annual",
		StartDate: "2025-06-10",
		EndDate:   "2025-06-12",
		Reason:    "Family trip",
	}
	f.leaves.On("Create", mock.Anything, handlerStaffID, req).
		Return(leave.LeaveResponse{ID: handlerLeaveID, Status: "pending", TotalDays: 3}, nil).Once()

	rec, body := f.do(t, jsonRequest(t, http.MethodPost, "/api/v1/leaves", req), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Success)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, handlerLeaveID, data["id"])
	assert.Equal(t, float64(3), data["total_days"])
}

func TestLeaveHandler_Create_InvalidJSON(t *testing.T) {
	f := newHandlerFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves", bytes.NewBufferString("{not json"))

	rec, _ := f.do(t, req, f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHandler_Create_MapsConflict(t *testing.T) {
	f := newHandlerFixture(t)
	f.leaves.On("Create", mock.Anything, handlerStaffID, mock.Anything).
		Return(leave.LeaveResponse{}, leave.ErrOverlappingLeave).Once()

	rec, body := f.do(t, jsonRequest(t, http.MethodPost, "/api/v1/leaves", leave.CreateLeaveRequest{}), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "You already have a leave request that overlaps with the selected dates", body.Error.Message)
}

func TestLeaveHandler_List_RequiresApproverRole(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/leaves", nil), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.leaves.AssertNotCalled(t, "ListAll", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveHandler_List_StatusFilter(t *testing.T) {
	f := newHandlerFixture(t)
	f.leaves.On("ListByStatus", mock.Anything, handlerHRID, leave.LeaveStatusApproved, mock.MatchedBy(func(filter leave.LeaveRequestFilter) bool {
		return filter.Page == 2 && filter.Limit == 5 && filter.Status != nil && *filter.Status == "approved"
	})).Return(leave.ListLeaveRequestResponse{Page: 2, Limit: 5}, nil).Once()

	rec, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/leaves?status=approved&page=2&limit=5", nil), f.token(t, handlerHRID, user.RoleHR))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
}

func TestLeaveHandler_ListMine_NoStatus(t *testing.T) {
	f := newHandlerFixture(t)
	f.leaves.On("ListMine", mock.Anything, handlerStaffID, leave.LeaveRequestFilter{}).
		Return(leave.ListLeaveRequestResponse{Showing: "0 results"}, nil).Once()

	rec, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/leaves/my", nil), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLeaveHandler_Decide_InvalidState(t *testing.T) {
	f := newHandlerFixture(t)
	comments := "Not now"
	req := leave.DecisionRequest{Status: "rejected", Comments: &comments}
	f.leaves.On("Decide", mock.Anything, handlerHRID, handlerLeaveID, req).
		Return(leave.LeaveResponse{}, &leave.InvalidStateError{Status: leave.LeaveStatusApproved, Action: leave.ActionReject}).Once()

	rec, body := f.do(t, jsonRequest(t, http.MethodPost, "/api/v1/leaves/"+handlerLeaveID+"/decision", req), f.token(t, handlerHRID, user.RoleHR))

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INVALID_STATE", body.Error.Code)
	assert.Equal(t, "Leave is already Approved", body.Error.Message)
}

func TestLeaveHandler_Decide_ForbiddenForStaff(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.do(t, jsonRequest(t, http.MethodPost, "/api/v1/leaves/"+handlerLeaveID+"/decision", leave.DecisionRequest{Status: "approved"}), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLeaveHandler_Cancel(t *testing.T) {
	f := newHandlerFixture(t)
	f.leaves.On("Cancel", mock.Anything, handlerStaffID, handlerLeaveID).
		Return(leave.LeaveResponse{ID: handlerLeaveID, Status: "cancelled"}, nil).Once()

	rec, body := f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/leaves/"+handlerLeaveID+"/cancel", nil), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Leave application cancelled successfully", body.Message)
}

func TestLeaveHandler_Delete_NotFound(t *testing.T) {
	f := newHandlerFixture(t)
	f.leaves.On("Delete", mock.Anything, handlerStaffID, handlerLeaveID).
		Return(leave.ErrLeaveRequestNotFound).Once()

	rec, body := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/leaves/"+handlerLeaveID, nil), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "Leave request not found", body.Error.Message)
}

func TestLeaveHandler_Balance(t *testing.T) {
	f := newHandlerFixture(t)
	f.leaves.On("RemainingDays", mock.Anything, handlerStaffID, leave.LeaveTypeAnnual, 2025).
		Return(leave.BalanceResponse{LeaveType: "annual", Year: 2025, Entitlement: 21, Used: 3, Remaining: 18}, nil).Once()

	rec, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/leaves/balance/annual?year=2025", nil), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(18), data["remaining"])
}

func TestLeaveHandler_Balance_BadYear(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/leaves/balance/annual?year=soon", nil), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHandler_Stats_PassesTarget(t *testing.T) {
	f := newHandlerFixture(t)
	f.leaves.On("Stats", mock.Anything, handlerHRID, mock.MatchedBy(func(target *string) bool {
		return target != nil && *target == handlerStaffID
	})).Return(leave.StatsResponse{TotalLeaves: 4}, nil).Once()

	rec, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/leaves/stats?user_id="+handlerStaffID, nil), f.token(t, handlerHRID, user.RoleHR))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLeaveHandler_UploadAttachment(t *testing.T) {
	f := newHandlerFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "medical.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	f.leaves.On("UploadAttachment", mock.Anything, handlerStaffID, handlerLeaveID, mock.MatchedBy(func(u leave.AttachmentUpload) bool {
		return u.File != nil && u.FileName == "medical.pdf" && u.Size == int64(len("%PDF-1.4 test"))
	})).Return(leave.AttachmentResponse{ID: "att-1", OriginalFileName: "medical.pdf"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves/"+handlerLeaveID+"/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec, body := f.do(t, req, f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Success)
}

func TestLeaveHandler_UploadAttachment_MissingFile(t *testing.T) {
	f := newHandlerFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file"))
	require.NoError(t, mw.Close())

	f.leaves.On("UploadAttachment", mock.Anything, handlerStaffID, handlerLeaveID, leave.AttachmentUpload{}).
		Return(leave.AttachmentResponse{}, leave.ErrValidation).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves/"+handlerLeaveID+"/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec, _ := f.do(t, req, f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLeaveHandler_DeleteAttachment(t *testing.T) {
	f := newHandlerFixture(t)
	f.leaves.On("DeleteAttachment", mock.Anything, handlerStaffID, handlerLeaveID, "att-1").Return(nil).Once()

	rec, _ := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/leaves/"+handlerLeaveID+"/attachments/att-1", nil), f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusOK, rec.Code)
}
