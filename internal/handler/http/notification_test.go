package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
)

func TestNotificationHandler_GetSSEToken(t *testing.T) {
	f := newHandlerFixture(t)

	rec, body := f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/notifications/sse-token", nil), f.token(t, handlerStaffID, user.RoleStaff))

	require.Equal(t, http.StatusOK, rec.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(300), data["expires_in"])

	userID, err := f.jwt.ValidateSSEToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, handlerStaffID, userID)
}

func TestNotificationHandler_Stream_RejectsTokens(t *testing.T) {
	f := newHandlerFixture(t)
	access := f.token(t, handlerStaffID, user.RoleStaff)

	for name, target := range map[string]string{
		"missing":      "/api/v1/notifications/stream",
		"garbage":      "/api/v1/notifications/stream?token=nope",
		"access token": "/api/v1/notifications/stream?token=" + access,
	} {
		t.Run(name, func(t *testing.T) {
			rec, _ := f.do(t, httptest.NewRequest(http.MethodGet, target, nil), "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestNotificationHandler_MarkAsRead_Validation(t *testing.T) {
	f := newHandlerFixture(t)

	req := jsonRequest(t, http.MethodPost, "/api/v1/notifications/read", map[string][]string{"notification_ids": {"not-a-uuid"}})
	rec, body := f.do(t, req, f.token(t, handlerStaffID, user.RoleStaff))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Details, "notification_ids")
}
