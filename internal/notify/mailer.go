package notify

import (
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/kamaudev/dukashop/internal/config"
)

// Mailer sends plain-text mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) *Mailer {
	port, err := strconv.Atoi(cfg.SMTP_PORT)
	if err != nil {
		port = 587
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTP_HOST, port, cfg.SMTP_USER, cfg.SMTP_PASSWORD),
		from:   cfg.SMTP_FROM,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
