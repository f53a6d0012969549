package mailservice

import (
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/blogverse/internal/common"
)

func NewMailer(cfg SMTPConfig, r TemplateRenderer) *Mail {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 5 * time.Second

	return &Mail{
		dialer:   dialer,
		renderer: r,
		sender:   cfg.Sender,
	}
}

// send renders tmpl with the notification data and mails it to the notification's
// recipient, addressed by name when the data carries one.
func (m *Mail) send(n common.Notification, tmpl string) error {
	out, err := m.renderer.Render(tmpl, n.Data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetAddressHeader("To", n.Email, n.Data["Name"])
	msg.SetHeader("Subject", out.Subject)
	msg.SetBody("text/plain", out.Plain)
	msg.AddAlternative("text/html", out.HTML)

	return m.dialer.DialAndSend(msg)
}
