package email

import (
	"context"

	"github.com/gymdesk/gymdesk/internal/infrastructure/template"
	"github.com/gymdesk/gymdesk/internal/shared/config"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
	"github.com/gymdesk/gymdesk/internal/shared/services/markdown"
)

// LogExpirationNotifier stands in for SMTP when no host is configured. It
// logs each notice and reports success so the cycle still records it.
type LogExpirationNotifier struct {
	logger logger.Interface
}

func NewLogExpirationNotifier(log logger.Interface) *LogExpirationNotifier {
	return &LogExpirationNotifier{logger: log}
}

func (n *LogExpirationNotifier) SendExpirationNotice(ctx context.Context, to string, daysRemaining *int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if daysRemaining == nil {
		n.logger.Infow("suspension notice (smtp not configured)", "to", to)
		return nil
	}
	n.logger.Infow("expiration reminder (smtp not configured)",
		"to", to,
		"days_remaining", *daysRemaining,
	)
	return nil
}

// ExpirationNotifier is the interface both notifiers satisfy.
type ExpirationNotifier interface {
	SendExpirationNotice(ctx context.Context, to string, daysRemaining *int) error
}

// NewExpirationNotifier returns the SMTP notifier when cfg has a host and
// the log notifier otherwise. Notice templates are loaded up front so a
// broken override fails at startup.
func NewExpirationNotifier(cfg *config.EmailConfig, log logger.Interface) (ExpirationNotifier, error) {
	if cfg.SMTPHost == "" {
		log.Warnw("email service not configured, smtp_host is empty; notices will only be logged")
		return NewLogExpirationNotifier(log), nil
	}

	templates := template.NewNoticeTemplateLoader(cfg.TemplatesDir, log)
	if err := templates.Load(); err != nil {
		return nil, err
	}
	return NewSMTPExpirationNotifier(SMTPConfigFrom(cfg), templates, markdown.NewEmailRenderer()), nil
}
