package email

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/gymdesk/gymdesk/internal/infrastructure/template"
	"github.com/gymdesk/gymdesk/internal/shared/config"
	"github.com/gymdesk/gymdesk/internal/shared/services/markdown"
)

var ErrEmailServiceNotConfigured = errors.New("email service not configured")

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	RenewURL    string // Link members follow to renew
}

func SMTPConfigFrom(cfg *config.EmailConfig) SMTPConfig {
	return SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
		RenewURL:    cfg.RenewURL,
	}
}

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type noticeRenderer interface {
	Render(kind template.NoticeKind, data template.NoticeData) (*template.RenderedNotice, error)
}

// SMTPExpirationNotifier emails membership reminders and suspension notices.
// Bodies are Markdown templates sent as plain text with a sanitized HTML
// alternative.
type SMTPExpirationNotifier struct {
	config    SMTPConfig
	sender    sender
	templates noticeRenderer
	markdown  markdown.Renderer
}

func NewSMTPExpirationNotifier(config SMTPConfig, templates noticeRenderer, md markdown.Renderer) *SMTPExpirationNotifier {
	return &SMTPExpirationNotifier{
		config:    config,
		sender:    gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		templates: templates,
		markdown:  md,
	}
}

// SendExpirationNotice sends a reminder when daysRemaining is set, or a
// suspension notice when it is nil.
func (s *SMTPExpirationNotifier) SendExpirationNotice(ctx context.Context, to string, daysRemaining *int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.config.FromAddress == "" {
		return ErrEmailServiceNotConfigured
	}

	kind, data := noticeFor(to, daysRemaining, s.config)
	notice, err := s.templates.Render(kind, data)
	if err != nil {
		return err
	}

	htmlBody, err := s.markdown.ToHTMLSanitized(notice.Body)
	if err != nil {
		return fmt.Errorf("failed to render %s notice: %w", kind, err)
	}

	return s.sendEmail(to, notice.Subject, htmlBody, notice.Body)
}

func noticeFor(to string, daysRemaining *int, cfg SMTPConfig) (template.NoticeKind, template.NoticeData) {
	data := template.NoticeData{
		Email:    to,
		RenewURL: cfg.RenewURL,
		GymName:  cfg.FromName,
	}
	if data.GymName == "" {
		data.GymName = "the gym"
	}

	if daysRemaining == nil {
		return template.NoticeSuspension, data
	}

	days := *daysRemaining
	data.DaysRemaining = days
	switch days {
	case 0:
		data.When = "today"
	case 1:
		data.When = "tomorrow"
	default:
		data.When = fmt.Sprintf("in %d days", days)
	}
	return template.NoticeReminder, data
}

func (s *SMTPExpirationNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	if s.config.FromName != "" {
		m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	} else {
		m.SetHeader("From", s.config.FromAddress)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
