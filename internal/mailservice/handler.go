package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/rand"

	"github.com/sushihentaime/blogverse/internal/common"
)

const consumerName = "mailservice"

// notificationTemplates maps each routing key on the notification queue to its mail.
var notificationTemplates = map[common.BindingKey]string{
	common.UserCreatedKey:    "welcome_email.html",
	common.PasswordResetKey:  "password_reset.html",
	common.UserFollowedKey:   "new_follower.html",
	common.CommentCreatedKey: "new_comment.html",
}

// NewMailService parses the notification templates and returns a service that mails them
// through the given SMTP relay.
func NewMailService(mb common.MessageConsumer, smtp SMTPConfig, logger *slog.Logger) (*MailService, error) {
	names := make([]string, 0, len(notificationTemplates))
	for _, name := range notificationTemplates {
		names = append(names, name)
	}

	tp, err := loadTemplates(names...)
	if err != nil {
		return nil, err
	}

	return newMailService(mb, NewMailer(smtp, tp), logger, DefaultRetryPolicy), nil
}

func newMailService(mb common.MessageConsumer, m Mailer, logger MailLogger, retry RetryPolicy) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         m,
		logger:    logger,
		retry:     retry,
		ctx:       ctx,
		cancel:    cancel,
		templates: notificationTemplates,
	}
}

// Start consumes the notification queue in the background until Close is called or the
// delivery channel closes.
func (s *MailService) Start() error {
	msgs, err := s.mb.Consume(consumerName, common.NotificationQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				s.handle(msg)
				_ = msg.Ack(false)

			case <-s.ctx.Done():
				s.logger.Info("stopping mail consumer due to context cancellation")
				return
			}
		}
	}()

	return nil
}

// handle sends the mail for one delivery. Undeliverable messages are logged and dropped.
func (s *MailService) handle(msg amqp.Delivery) {
	key := common.BindingKey(msg.RoutingKey)

	tmpl, ok := s.templates[key]
	if !ok {
		s.logger.Error("no mail template for routing key", slog.String("key", msg.RoutingKey))
		return
	}

	var n common.Notification
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		return
	}

	if n.Email == "" {
		s.logger.Error("notification without recipient", slog.String("key", msg.RoutingKey))
		return
	}

	if err := s.sendWithRetry(n, tmpl); err != nil {
		s.logger.Error("could not send email", slog.String("email", n.Email), slog.String("template", tmpl), slog.String("error", err.Error()))
		return
	}

	s.logger.Info("email sent", slog.String("email", n.Email), slog.String("template", tmpl))
}

// sendWithRetry uses exponential backoff with jitter between attempts.
func (s *MailService) sendWithRetry(n common.Notification, tmpl string) error {
	var err error
	for attempt := 0; attempt < s.retry.MaxRetries; attempt++ {
		err = s.m.send(n, tmpl)
		if err == nil {
			return nil
		}

		if attempt == s.retry.MaxRetries-1 {
			break
		}

		delay := time.Duration(rand.Int63n(int64(s.retry.BaseDelay) << uint(attempt)))
		s.logger.Info("delaying email", slog.String("email", n.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}

	return err
}

// Close stops the consumer and waits for the in-flight message.
func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}
