package notifier

import (
	"context"
	"fmt"

	"github.com/semmidev/stowaway/internal/config"
	"github.com/semmidev/stowaway/internal/domain"
	"github.com/wneessen/go-mail"
)

const implicitTLSPort = 465

type EmailSender struct {
	server   string
	port     int
	sender   string
	password string
}

func NewEmail(cfg *config.MailConfig) (*EmailSender, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("mail server is not configured")
	}
	if cfg.Sender == "" || cfg.Password == "" {
		return nil, fmt.Errorf("mail sender and password are required")
	}

	port := cfg.Port
	if port == 0 {
		port = implicitTLSPort
	}

	return &EmailSender{
		server:   cfg.Server,
		port:     port,
		sender:   cfg.Sender,
		password: cfg.Password,
	}, nil
}

// Send delivers msg to all recipients over one authenticated SMTP session.
func (e *EmailSender) Send(ctx context.Context, msg domain.Message, recipients []string) error {
	m, err := e.buildMessage(msg, recipients)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(e.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.sender),
		mail.WithPassword(e.password),
	}
	if e.port == implicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(e.server, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail via %s:%d: %w", e.server, e.port, err)
	}

	return nil
}

func (e *EmailSender) buildMessage(msg domain.Message, recipients []string) (*mail.Msg, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients")
	}

	m := mail.NewMsg()
	if err := m.From(e.sender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(recipients...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	return m, nil
}
