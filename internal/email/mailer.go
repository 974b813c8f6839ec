package email

import (
	"fmt"

	mail "github.com/go-mail/mail"
	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/config"
)

// Mailer sends transactional email. A nil Mailer is the unconfigured
// state; callers must treat it as "delivery disabled", not an error.
type Mailer interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPMailer delivers through an SMTP relay using go-mail.
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
	logger *zap.Logger
}

// New builds a mailer from config, or nil when SMTP is not configured.
func New(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if !cfg.Configured() {
		logger.Warn("SMTP_HOST not provided; outbound email disabled")
		return nil
	}
	return &SMTPMailer{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// Send delivers a multipart text/html message.
func (s *SMTPMailer) Send(to, subject, htmlBody, textBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("smtp send failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
