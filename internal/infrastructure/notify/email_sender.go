package notify

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/pkg/config"
)

var _ stockalert.ChannelSender = (*EmailSender)(nil)

// MailDialer subconjunto de *gomail.Dialer.
type MailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender canal email por SMTP. Adjunta el reporte PDF del digest si viene.
type EmailSender struct {
	dialer MailDialer
	from   string
}

// NewEmailSender construye el sender con un dialer SMTP.
func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return NewEmailSenderWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

// NewEmailSenderWithDialer permite inyectar el dialer (tests).
func NewEmailSenderWithDialer(d MailDialer, from string) *EmailSender {
	return &EmailSender{dialer: d, from: from}
}

func (s *EmailSender) Channel() entity.Channel { return entity.ChannelEmail }

// Send arma el mensaje y lo envía. gomail no acepta contexto: el envío corre aparte y se
// abandona si el contexto vence.
func (s *EmailSender) Send(ctx context.Context, n entity.Notification) error {
	if n.Recipient.Email == "" {
		return fmt.Errorf("email %s: %w", n.Recipient.UserID, ErrNoEmail)
	}
	msg := buildMessage(s.from, n)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("email: enviar a %s: %w", n.Recipient.Email, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("email: enviar a %s: %w", n.Recipient.Email, ctx.Err())
	}
}

func buildMessage(from string, n entity.Notification) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	if n.Recipient.Name != "" {
		m.SetHeader("To", m.FormatAddress(n.Recipient.Email, n.Recipient.Name))
	} else {
		m.SetHeader("To", n.Recipient.Email)
	}
	m.SetHeader("Subject", n.Subject)
	if n.Severity.IsCritical() {
		m.SetHeader("X-Priority", "1")
	}
	m.SetBody("text/plain", n.Body)
	for _, att := range n.Attachments {
		data := att.Data
		m.Attach(att.Name,
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return m
}
