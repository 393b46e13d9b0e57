package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

// DefaultSubject is used when SMTPConfig.Subject is empty.
const DefaultSubject = "Welcome to MyApp"

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
	Timeout  time.Duration
}

// SMTPSender delivers notifications as email over SMTP.
type SMTPSender struct {
	cfg    SMTPConfig
	opts   []mail.Option
	logger *slog.Logger
}

var _ ports.Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTP sender. Nothing is dialed until Send.
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: smtp host is required", apperrors.ErrSend)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return &SMTPSender{
		cfg:    cfg,
		opts:   opts,
		logger: logger.With("component", "smtp_sender"),
	}, nil
}

// Send emails message to recipient as plain text with an HTML alternative.
// Each call uses its own connection.
func (s *SMTPSender) Send(ctx context.Context, message, recipient string) error {
	msg, err := s.buildMessage(message, recipient)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("%w: smtp client: %w", apperrors.ErrSend, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: smtp deliver to %s: %w", apperrors.ErrSend, recipient, err)
	}

	s.logger.InfoContext(ctx, "email sent", "to_email", recipient, "subject", s.cfg.Subject)
	return nil
}

func (s *SMTPSender) buildMessage(message, recipient string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("%w: sender address: %w", apperrors.ErrSend, err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("%w: recipient address: %w", apperrors.ErrSend, err)
	}
	msg.Subject(s.cfg.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message)
	msg.AddAlternativeString(mail.TypeTextHTML, "<b>"+html.EscapeString(message)+"</b>")
	return msg, nil
}
