package common

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Exchange string

type Queue string

type BindingKey string

type MessageProducer interface {
	Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error
}

type MessageConsumer interface {
	Consume(consumer string, queue Queue) (<-chan amqp.Delivery, error)
}

const (
	BlogExchange      Exchange = "blog_exchange"
	NotificationQueue Queue    = "notification_queue"

	UserCreatedKey    BindingKey = "user.created"
	PasswordResetKey  BindingKey = "user.password_reset"
	UserFollowedKey   BindingKey = "user.followed"
	CommentCreatedKey BindingKey = "comment.created"
)

// NotificationKeys are the routing keys bound to the notification queue.
var NotificationKeys = []BindingKey{UserCreatedKey, PasswordResetKey, UserFollowedKey, CommentCreatedKey}

// Notification is the body of every message published to the notification queue. The
// routing key selects the mail template.
type Notification struct {
	Email string            `json:"email"`
	Data  map[string]string `json:"data"`
}

type MessageBroker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewMessageBroker(URI string) (*MessageBroker, error) {
	conn, ch, err := connectAMQP(URI)
	if err != nil {
		return nil, err
	}

	return &MessageBroker{
		conn: conn,
		ch:   ch,
	}, nil
}

func connectAMQP(URI string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(URI)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	return conn, ch, nil
}

// Close closes the connection and channel of the message broker.
func (mb *MessageBroker) Close() error {
	err := mb.ch.Close()
	if err != nil {
		return err
	}

	err = mb.conn.Close()
	if err != nil {
		return err
	}

	return nil
}

// SetupNotificationExchange declares the blog exchange and binds every notification key to
// the notification queue.
func SetupNotificationExchange(mb *MessageBroker) error {
	err := mb.ch.ExchangeDeclare(string(BlogExchange), "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = mb.ch.QueueDeclare(string(NotificationQueue), true, false, false, false, nil)
	if err != nil {
		return err
	}

	for _, key := range NotificationKeys {
		err = mb.ch.QueueBind(string(NotificationQueue), string(key), string(BlogExchange), false, nil)
		if err != nil {
			return err
		}
	}

	return nil
}

func (mb *MessageBroker) Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error {
	err := mb.ch.PublishWithContext(ctx, string(exchange), string(key), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         msg,
	})
	if err != nil {
		return fmt.Errorf("could not publish message: %w", err)
	}

	return nil
}

func (mb *MessageBroker) Consume(consumer string, queue Queue) (<-chan amqp.Delivery, error) {
	msgs, err := mb.ch.Consume(string(queue), consumer, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("could not consume message: %w", err)
	}

	return msgs, nil
}

// PublishNotification encodes n and publishes it on the blog exchange under key.
func PublishNotification(ctx context.Context, p MessageProducer, key BindingKey, n Notification) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return p.Publish(ctx, body, key, BlogExchange)
}
