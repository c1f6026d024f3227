package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/UnknownOlympus/plutus/internal/config"
	"github.com/UnknownOlympus/plutus/internal/metrics"
)

var ErrNoRecipient = errors.New("recipient address is empty")

// Message is a single mail carrying exactly one attachment.
type Message struct {
	To             string
	Subject        string
	Body           string // Body is sent as text/plain.
	AttachmentPath string
}

type SenderIface interface {
	Send(ctx context.Context, msg Message) error
}

// Sender delivers messages over SMTP. Every Send opens its own connection,
// upgrades it with STARTTLS when the server offers it, authenticates and closes it again.
// Authentication is mandatory: PLAIN credentials are only sent over TLS or to a loopback
// host, so a server that offers neither TLS nor AUTH never receives a payslip.
type Sender struct {
	dialer  *gomail.Dialer
	from    string
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewSender(cfg config.SMTPConfig, log *slog.Logger, metrics *metrics.Metrics) *Sender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password)
	dialer.Auth = smtp.PlainAuth("", cfg.Sender, cfg.Password, cfg.Host)
	if cfg.SSL {
		dialer.SSL = true
	}
	if cfg.InsecureSkipVerify {
		log.Warn("TLS certificate verification is disabled for the mail server", "host", cfg.Host)
		dialer.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host} //nolint:gosec // opt-in for internal relays
	}

	return &Sender{
		dialer:  dialer,
		from:    cfg.Sender,
		log:     log.With(slog.String("division", "mail")),
		metrics: metrics,
	}
}

// Send transmits msg with its attachment. Nothing is retried.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(msg.AttachmentPath); err != nil {
		return fmt.Errorf("failed to access attachment: %w", err)
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", s.from)
	mail.SetHeader("To", strings.TrimSpace(msg.To))
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)
	mail.Attach(msg.AttachmentPath, gomail.Rename(filepath.Base(msg.AttachmentPath)))

	s.log.DebugContext(ctx, "Sending mail", "host", s.dialer.Host, "port", s.dialer.Port, "to", msg.To)

	if err := s.dialer.DialAndSend(mail); err != nil {
		s.metrics.MailsSent.WithLabelValues("failure").Inc()
		return fmt.Errorf("failed to send mail to '%s': %w", msg.To, err)
	}

	s.metrics.MailsSent.WithLabelValues("success").Inc()

	return nil
}
