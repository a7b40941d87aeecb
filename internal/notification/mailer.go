package notification

import (
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer delivers a notification by email. Delivery is best effort;
// callers ignore failures.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	p, err := strconv.Atoi(port)
	if err != nil {
		p = 465
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, p, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
