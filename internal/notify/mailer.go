// Package notify delivers notification emails over SMTP.
package notify

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends HTML email through an SMTP relay.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewMailer creates an SMTP mailer.
func NewMailer(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{
		host: host,
		port: port,
		user: user,
		pass: pass,
		from: from,
	}
}

// Send delivers one message to the given recipients. Errors are returned to
// the caller; callers decide whether delivery is best-effort.
func (m *Mailer) Send(to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
