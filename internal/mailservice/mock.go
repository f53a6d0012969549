package mailservice

import (
	"errors"
	"sync"

	"github.com/go-mail/mail/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"

	"github.com/sushihentaime/blogverse/internal/common"
)

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(name string, data map[string]string) (*Rendered, error) {
	args := m.Called(name, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Rendered), args.Error(1)
}

type MockDialer struct {
	mock.Mock
}

func (d *MockDialer) DialAndSend(m ...*mail.Message) error {
	args := d.Called(m)
	return args.Error(0)
}

var errMockSend = errors.New("smtp unavailable")

type sentMail struct {
	Recipient string
	Template  string
	Data      map[string]string
}

// MockMailer records sent mails and fails the first FailTimes attempts.
type MockMailer struct {
	mu        sync.Mutex
	FailTimes int
	Attempts  int
	Sent      []sentMail
}

func (m *MockMailer) send(n common.Notification, tmpl string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Attempts++
	if m.Attempts <= m.FailTimes {
		return errMockSend
	}

	m.Sent = append(m.Sent, sentMail{Recipient: n.Email, Template: tmpl, Data: n.Data})
	return nil
}

func (m *MockMailer) sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]sentMail(nil), m.Sent...)
}

// MockMessageConsumer delivers Deliveries and then closes the channel.
type MockMessageConsumer struct {
	mock.Mock
	Deliveries []amqp.Delivery
}

func (m *MockMessageConsumer) Consume(consumer string, queue common.Queue) (<-chan amqp.Delivery, error) {
	args := m.Called(consumer, queue)
	if err := args.Error(0); err != nil {
		return nil, err
	}

	msgs := make(chan amqp.Delivery, len(m.Deliveries))
	for _, d := range m.Deliveries {
		msgs <- d
	}
	close(msgs)

	return msgs, nil
}

type MockLogger struct {
	mock.Mock
}

func (l *MockLogger) Error(msg string, args ...any) {
	l.Called(msg)
}

func (l *MockLogger) Info(msg string, args ...any) {
	l.Called(msg)
}
