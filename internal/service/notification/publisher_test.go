package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
)

func TestNewKafkaMessage(t *testing.T) {
	leaveID := "5f0c6f7e-8d7b-4a51-9a0e-2a7f3f0a1b2c"
	n := notification.Event{
		Type:            notification.TypeLeaveApplication,
		Title:           "New Leave Application",
		Message:         "Jane Doe has applied for Annual Leave",
		RelatedEntityID: &leaveID,
	}.ToNotification("n1", "u1", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))

	msg, err := newKafkaMessage("leave-notifications", n)
	require.NoError(t, err)

	assert.Equal(t, "leave-notifications", msg.Topic)
	assert.Equal(t, []byte("u1"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "leave_application", string(msg.Headers[0].Value))

	var decoded notification.NotificationResponse
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "n1", decoded.ID)
	assert.Equal(t, leaveID, *decoded.RelatedEntityID)
}

func TestNoopPublisher(t *testing.T) {
	p := NoopPublisher()
	assert.NoError(t, p.Publish(context.Background(), nil))
	assert.NoError(t, p.Close())
}
