package mailservice

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogverse/internal/common"
)

var fastRetry = RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}

func delivery(t *testing.T, key common.BindingKey, n common.Notification) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(n)
	require.NoError(t, err)

	return amqp.Delivery{RoutingKey: string(key), Body: body}
}

func newLogger() *MockLogger {
	l := new(MockLogger)
	l.On("Info", mock.Anything).Return()
	l.On("Error", mock.Anything).Return()
	return l
}

func TestMailServiceRoutesNotifications(t *testing.T) {
	mc := &MockMessageConsumer{Deliveries: []amqp.Delivery{
		delivery(t, common.UserCreatedKey, common.Notification{Email: "ann@x.com", Data: map[string]string{"Name": "Ann"}}),
		delivery(t, common.PasswordResetKey, common.Notification{Email: "ann@x.com", Data: map[string]string{"Token": "tok"}}),
		delivery(t, common.UserFollowedKey, common.Notification{Email: "bob@x.com", Data: map[string]string{"FollowerName": "Ann"}}),
		delivery(t, common.CommentCreatedKey, common.Notification{Email: "ann@x.com", Data: map[string]string{"BlogTitle": "Hello"}}),
	}}
	mc.On("Consume", consumerName, common.NotificationQueue).Return(nil)

	mailer := new(MockMailer)
	s := newMailService(mc, mailer, newLogger(), fastRetry)

	require.NoError(t, s.Start())
	s.wg.Wait()

	sent := mailer.sent()
	require.Len(t, sent, 4)
	assert.Equal(t, "welcome_email.html", sent[0].Template)
	assert.Equal(t, "password_reset.html", sent[1].Template)
	assert.Equal(t, map[string]string{"Token": "tok"}, sent[1].Data)
	assert.Equal(t, "new_follower.html", sent[2].Template)
	assert.Equal(t, "bob@x.com", sent[2].Recipient)
	assert.Equal(t, "new_comment.html", sent[3].Template)

	mc.AssertExpectations(t)
}

func TestMailServiceDropsBadMessages(t *testing.T) {
	mc := &MockMessageConsumer{Deliveries: []amqp.Delivery{
		{RoutingKey: string(common.UserCreatedKey), Body: []byte("not json")},
		delivery(t, "user.unknown", common.Notification{Email: "ann@x.com"}),
		delivery(t, common.UserCreatedKey, common.Notification{}),
	}}
	mc.On("Consume", consumerName, common.NotificationQueue).Return(nil)

	mailer := new(MockMailer)
	logger := newLogger()
	s := newMailService(mc, mailer, logger, fastRetry)

	require.NoError(t, s.Start())
	s.wg.Wait()

	assert.Empty(t, mailer.sent())
	logger.AssertNumberOfCalls(t, "Error", 3)
}

func TestMailServiceRetries(t *testing.T) {
	tests := []struct {
		name      string
		failTimes int
		sent      int
		attempts  int
	}{
		{"succeeds after failures", 2, 1, 3},
		{"gives up", 5, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := &MockMessageConsumer{Deliveries: []amqp.Delivery{
				delivery(t, common.UserCreatedKey, common.Notification{Email: "ann@x.com"}),
			}}
			mc.On("Consume", consumerName, common.NotificationQueue).Return(nil)

			mailer := &MockMailer{FailTimes: tt.failTimes}
			s := newMailService(mc, mailer, newLogger(), fastRetry)

			require.NoError(t, s.Start())
			s.wg.Wait()

			assert.Len(t, mailer.sent(), tt.sent)
			assert.Equal(t, tt.attempts, mailer.Attempts)
		})
	}
}

func TestMailServiceConsumeError(t *testing.T) {
	mc := new(MockMessageConsumer)
	mc.On("Consume", consumerName, common.NotificationQueue).Return(errors.New("channel closed"))

	s := newMailService(mc, new(MockMailer), newLogger(), fastRetry)
	assert.Error(t, s.Start())
	s.Close()
}

func TestNewMailService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := NewMailService(new(MockMessageConsumer), SMTPConfig{Host: "localhost", Port: 1025, Sender: "no-reply@blogverse.local"}, logger)
	require.NoError(t, err)

	mailer, ok := s.m.(*Mail)
	require.True(t, ok)
	assert.Equal(t, "no-reply@blogverse.local", mailer.sender)

	tp, ok := mailer.renderer.(*Templates)
	require.True(t, ok)
	for _, name := range notificationTemplates {
		assert.Contains(t, tp.set, name)
	}

	s.Close()
}
