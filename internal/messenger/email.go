package messenger

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"identity-service/internal/config"
	"identity-service/internal/domain/user"
)

// EmailSender delivers messages over SMTP.
type EmailSender struct {
	cfg *config.SMTPConfig
}

func NewEmailSender(cfg *config.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) ServiceType() string {
	return EmailType
}

func (s *EmailSender) Send(ctx context.Context, recipient, subject, message string) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, recipient, subject, message)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.cfg.From, []string{recipient}, []byte(body))
	}()

	// net/smtp has no context support, so honor cancellation here and
	// let the dial time out on its own.
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *EmailSender) Recipient(u *user.User) (string, error) {
	return u.Email, nil
}
