package mailer

import (
	"context"
	"fmt"

	"coach-portal/internal/coaching/config"
	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	"coach-portal/internal/shared/logger"

	"github.com/wneessen/go-mail"
)

// sender is the part of *mail.Client the mailer needs.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer delivers email through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg    config.MailConfig
	client sender
	logger logger.Logger
}

var _ repository.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds the client eagerly so bad settings surface at startup.
func NewSMTPMailer(cfg config.MailConfig, log logger.Logger) (*SMTPMailer, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.AppPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("configure smtp client: %w", err)
	}
	return &SMTPMailer{cfg: cfg, client: client, logger: log.WithComponent("mailer")}, nil
}

// Send never returns an error; a failed delivery is logged and reported as false.
func (m *SMTPMailer) Send(ctx context.Context, email model.Email) bool {
	msg, err := m.buildMessage(email)
	if err != nil {
		m.logger.Errorf("failed to build email to %s: %v", email.To, err)
		return false
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Errorf("failed to send email to %s: %v", email.To, err)
		return false
	}
	m.logger.Infof("email sent to %s: %s", email.To, email.Subject)
	return true
}

func (m *SMTPMailer) buildMessage(email model.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.User); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	msg.Subject(email.Subject)
	if email.HTML != "" {
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
		if email.Text != "" {
			msg.AddAlternativeString(mail.TypeTextPlain, email.Text)
		}
	} else {
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	}
	return msg, nil
}

// DisabledMailer is used when no SMTP credentials are configured.
type DisabledMailer struct {
	logger logger.Logger
}

func NewDisabledMailer(log logger.Logger) *DisabledMailer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &DisabledMailer{logger: log.WithComponent("mailer")}
}

func (d *DisabledMailer) Send(ctx context.Context, email model.Email) bool {
	d.logger.Warnf("SMTP not configured, dropping email to %s: %s", email.To, email.Subject)
	return false
}

// New picks the SMTP mailer when credentials exist and the disabled one otherwise.
func New(cfg config.MailConfig, log logger.Logger) (repository.Mailer, error) {
	if !cfg.Enabled() {
		return NewDisabledMailer(log), nil
	}
	return NewSMTPMailer(cfg, log)
}
