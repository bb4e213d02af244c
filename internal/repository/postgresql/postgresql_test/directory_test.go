package postgresql_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
	"github.com/teamdesk/teamdesk-backend-go/internal/repository/postgresql"
)

func TestUserRepository_GetByIDAndRole(t *testing.T) {
	ctx := setupTestDB(t)
	directory := postgresql.NewUserRepository(testDB)
	hrID := createTestUser(t, ctx, user.RoleHR, "Hana", "Rahma")
	createTestUser(t, ctx, user.RoleStaff, "Jane", "Doe")

	u, err := directory.GetByID(ctx, hrID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleHR, u.Role)
	assert.Equal(t, "Hana Rahma", u.FullName())

	hrs, err := directory.ListByRole(ctx, user.RoleHR)
	require.NoError(t, err)
	require.Len(t, hrs, 1)
	assert.Equal(t, hrID, hrs[0].ID)

	_, err = directory.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestAttachmentRepository_Lifecycle(t *testing.T) {
	ctx := setupTestDB(t)
	leaves := postgresql.NewLeaveRequestRepository(testDB)
	attachments := postgresql.NewAttachmentRepository(testDB)
	staffID := createTestUser(t, ctx, user.RoleStaff, "Jane", "Doe")

	created, err := leaves.Create(ctx, newTestLeave(staffID, leave.LeaveTypeSick, date(2025, 6, 10), date(2025, 6, 10)))
	require.NoError(t, err)

	for _, name := range []string{"note.pdf", "scan.png"} {
		_, err := attachments.Create(ctx, leave.LeaveAttachment{
			LeaveID:          created.ID,
			FileName:         "stored-" + name,
			OriginalFileName: name,
			FileType:         "application/octet-stream",
			FilePath:         "leaves/stored-" + name,
			FileURL:          "http://localhost:8080/uploads/leaves/stored-" + name,
			FileSize:         42,
			UploadedBy:       staffID,
			CreatedAt:        time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	listed, err := attachments.ListByLeave(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	byLeave, err := attachments.ListByLeaveIDs(ctx, []string{created.ID})
	require.NoError(t, err)
	assert.Len(t, byLeave[created.ID], 2)

	removed, err := attachments.SoftDeleteByLeave(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	listed, err = attachments.ListByLeave(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestNotificationRepository_ReadState(t *testing.T) {
	ctx := setupTestDB(t)
	repo := postgresql.NewNotificationRepository(testDB)
	staffID := createTestUser(t, ctx, user.RoleStaff, "Jane", "Doe")

	batch := []*notification.Notification{
		notification.Event{Type: notification.TypeLeaveApproved, Title: "Leave Application Approved", Message: "one"}.
			ToNotification(uuid.NewString(), staffID, time.Now().UTC().Add(-time.Minute)),
		notification.Event{Type: notification.TypeLeaveRejected, Title: "Leave Application Rejected", Message: "two"}.
			ToNotification(uuid.NewString(), staffID, time.Now().UTC()),
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	count, err := repo.GetUnreadCount(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.MarkAsRead(ctx, []string{batch[0].ID}, staffID))
	count, err = repo.GetUnreadCount(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unread, total, err := repo.GetByUserID(ctx, staffID, 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, unread, 1)
	assert.Equal(t, batch[1].ID, unread[0].ID)

	require.NoError(t, repo.MarkAllAsRead(ctx, staffID))
	count, err = repo.GetUnreadCount(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNotificationRepository_DeleteReadBefore(t *testing.T) {
	ctx := setupTestDB(t)
	repo := postgresql.NewNotificationRepository(testDB)
	staffID := createTestUser(t, ctx, user.RoleStaff, "Jane", "Doe")

	old := notification.Event{Type: notification.TypeLeaveApproved, Title: "old", Message: "old"}.
		ToNotification(uuid.NewString(), staffID, time.Now().UTC().Add(-100*24*time.Hour))
	oldUnread := notification.Event{Type: notification.TypeLeaveApproved, Title: "old unread", Message: "old"}.
		ToNotification(uuid.NewString(), staffID, time.Now().UTC().Add(-100*24*time.Hour))
	recent := notification.Event{Type: notification.TypeLeaveApproved, Title: "recent", Message: "recent"}.
		ToNotification(uuid.NewString(), staffID, time.Now().UTC())
	require.NoError(t, repo.CreateBatch(ctx, []*notification.Notification{old, oldUnread, recent}))
	require.NoError(t, repo.MarkAsRead(ctx, []string{old.ID, recent.ID}, staffID))

	deleted, err := repo.DeleteReadBefore(ctx, time.Now().UTC().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := repo.GetByUserID(ctx, staffID, 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
