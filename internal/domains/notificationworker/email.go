package notificationworker

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// SMTPConfig addresses the relay NotificationWorker authenticates against.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender is the production EmailSender. No messaging/email library
// appears anywhere in the retrieved example pack, so this is one of the few
// ambient concerns built directly on the standard library rather than a
// third-party client.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, msg.ToEmail, msg.Subject, msg.Body)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{msg.ToEmail}, []byte(body))
}

// LogSender is a no-op sender for local runs and tests where no relay is
// configured; it just records intent through the structured logger.
type LogSender struct {
	logger *Logger.Logger
}

func NewLogSender(logger *Logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Infow("reminder email (log sender)", "to", msg.ToEmail, "subject", msg.Subject)
	return nil
}
