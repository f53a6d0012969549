package mailservice

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/blogverse/internal/common"
)

type MailService struct {
	mb        common.MessageConsumer
	m         Mailer
	logger    MailLogger
	retry     RetryPolicy
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	templates map[common.BindingKey]string
}

// RetryPolicy bounds the attempts made to deliver one mail. The delay before attempt n is
// drawn uniformly from [0, BaseDelay << n).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

var DefaultRetryPolicy = RetryPolicy{MaxRetries: 5, BaseDelay: 500 * time.Millisecond}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

// SMTPConfig holds the relay used for outgoing mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type Mail struct {
	dialer   Dialer
	renderer TemplateRenderer
	sender   string
}

type Mailer interface {
	send(n common.Notification, tmpl string) error
}

// Templates holds the parsed mail templates keyed by file name.
type Templates struct {
	set map[string]*template.Template
}

// Rendered is one mail produced from a template.
type Rendered struct {
	Subject string
	Plain   string
	HTML    string
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateRenderer interface {
	Render(name string, data map[string]string) (*Rendered, error)
}
