package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/vet-admin-api/internal/config"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
)

type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// dialer is the part of gomail.Dialer the sender uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer dialer
	from   string
}

// NewService returns an SMTP sender, or a sender that only logs when SMTP is
// not configured.
func NewService(cfg config.SMTPConfig, log *logger.Logger) Service {
	if !cfg.Enabled() {
		return &logService{logger: log}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

type logService struct {
	logger *logger.Logger
}

func (s *logService) SendCustom(_ context.Context, to string, subject string, _ string) error {
	s.logger.Debug("SMTP not configured, email not sent", "to", to, "subject", subject)
	return nil
}
