// Package mail delivers support-contact messages over SMTP.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Config holds SMTP delivery settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// SupportEmail receives support messages.
	SupportEmail string
}

// Mailer sends support messages to the configured support address.
type Mailer struct {
	cfg Config
}

// New creates a Mailer from SMTP settings.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendSupport delivers a support request to the support address.
// The sender's address is set as Reply-To so support can answer directly.
func (m *Mailer) SendSupport(ctx context.Context, name, email, message string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(m.cfg.SupportEmail); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	if err := msg.ReplyTo(email); err != nil {
		return fmt.Errorf("set reply-to address: %w", err)
	}

	msg.Subject("New Support Request")
	msg.SetBodyString(gomail.TypeTextPlain,
		fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", name, email, message))

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send support mail: %w", err)
	}

	return nil
}
