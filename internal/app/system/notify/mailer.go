package notify

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/dalemusser/iglesiahub/internal/app/system/mailer"
	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPConfig configures the email channel.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// StartTLS requires TLS; disable only for local relays such as MailHog.
	StartTLS bool
}

// Mailer sends the email channel over SMTP.
type Mailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

func NewMailer(cfg SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) buildMessage(msg Message) (*mail.Msg, string, error) {
	from := msg.From
	if from == "" {
		from = m.cfg.From
	}
	if from == "" {
		return nil, "", fmt.Errorf("%w: no email sender", ErrNotConfigured)
	}

	out := mail.NewMsg()
	if m.cfg.FromName != "" {
		if err := out.FromFormat(m.cfg.FromName, from); err != nil {
			return nil, "", fmt.Errorf("set sender: %w", err)
		}
	} else if err := out.From(from); err != nil {
		return nil, "", fmt.Errorf("set sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, "", fmt.Errorf("set recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	html, err := mailer.BuildNotificationHTML(mailer.NotificationEmailData{
		SenderName: m.cfg.FromName,
		Subject:    msg.Subject,
		Body:       msg.Body,
	})
	if err != nil {
		return nil, "", fmt.Errorf("render html body: %w", err)
	}
	out.AddAlternativeString(mail.TypeTextHTML, html)

	id := uuid.NewString() + "@iglesiahub"
	out.SetGenHeader(mail.HeaderMessageID, "<"+id+">")
	return out, id, nil
}

// Send delivers msg and returns the generated Message-ID.
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	if m.cfg.Host == "" {
		return "", fmt.Errorf("%w: smtp host", ErrNotConfigured)
	}
	out, id, err := m.buildMessage(msg)
	if err != nil {
		return "", err
	}

	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password))
	}
	if m.cfg.StartTLS {
		opts = append(opts,
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithTLSConfig(&tls.Config{ServerName: m.cfg.Host}))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return "", fmt.Errorf("smtp client (host=%s port=%d): %w", m.cfg.Host, m.cfg.Port, err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		m.logger.Warn("smtp send failed", zap.String("host", m.cfg.Host), zap.Error(err))
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return id, nil
}
