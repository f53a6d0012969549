package common

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBroker_PublishConsume(t *testing.T) {
	uri := TestRabbitMQ(t)

	mb, err := NewMessageBroker(uri)
	require.NoError(t, err)
	t.Cleanup(func() { mb.Close() })

	require.NoError(t, SetupNotificationExchange(mb))

	msgs, err := mb.Consume("test-consumer", NotificationQueue)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n := Notification{Email: "ann@x.com", Data: map[string]string{"Name": "Ann"}}
	require.NoError(t, PublishNotification(ctx, mb, UserFollowedKey, n))

	select {
	case d := <-msgs:
		assert.Equal(t, string(UserFollowedKey), d.RoutingKey)

		var got Notification
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, n, got)
		assert.NoError(t, d.Ack(false))
	case <-ctx.Done():
		t.Fatal("timed out waiting for the notification")
	}
}

func TestPublishNotification_NilProducer(t *testing.T) {
	err := PublishNotification(context.Background(), nil, UserCreatedKey, Notification{Email: "a@b.com"})
	assert.NoError(t, err)
}
