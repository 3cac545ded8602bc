// Package template loads the Markdown templates used for membership notices.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

// NoticeKind selects a notice template.
type NoticeKind string

const (
	NoticeReminder   NoticeKind = "reminder"
	NoticeSuspension NoticeKind = "suspension"
)

var noticeKinds = []NoticeKind{NoticeReminder, NoticeSuspension}

//go:embed defaults/*.md
var defaultTemplates embed.FS

// NoticeData is what a notice template can reference.
type NoticeData struct {
	Email         string
	DaysRemaining int
	// When is "today", "tomorrow" or "in N days".
	When     string
	RenewURL string
	GymName  string
}

// RenderedNotice is a rendered template. The first line of the template,
// without a leading "#", is the subject; the rest is the Markdown body.
type RenderedNotice struct {
	Subject string
	Body    string
}

// NoticeTemplateLoader loads notice templates from a directory, falling back
// to the built-in templates for files that are absent.
// Override files are named reminder.md and suspension.md.
type NoticeTemplateLoader struct {
	templates map[NoticeKind]*texttemplate.Template
	path      string
	logger    logger.Interface
}

func NewNoticeTemplateLoader(path string, logger logger.Interface) *NoticeTemplateLoader {
	return &NoticeTemplateLoader{
		templates: make(map[NoticeKind]*texttemplate.Template),
		path:      path,
		logger:    logger,
	}
}

// Load parses every template. A missing override directory is not an
// error; a present but unparseable file is.
func (l *NoticeTemplateLoader) Load() error {
	for _, kind := range noticeKinds {
		src, origin, err := l.source(kind)
		if err != nil {
			return err
		}

		tmpl, err := texttemplate.New(string(kind)).Option("missingkey=error").Parse(src)
		if err != nil {
			return fmt.Errorf("failed to parse %s template from %s: %w", kind, origin, err)
		}
		l.templates[kind] = tmpl

		l.logger.Debugw("notice template loaded", "kind", kind, "source", origin)
	}
	return nil
}

func (l *NoticeTemplateLoader) source(kind NoticeKind) (string, string, error) {
	filename := string(kind) + ".md"

	if l.path != "" {
		filePath := filepath.Join(l.path, filename)
		content, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			return string(content), filePath, nil
		case !os.IsNotExist(err):
			return "", "", fmt.Errorf("failed to read template %s: %w", filePath, err)
		}
	}

	content, err := defaultTemplates.ReadFile("defaults/" + filename)
	if err != nil {
		return "", "", fmt.Errorf("missing built-in %s template: %w", kind, err)
	}
	return string(content), "built-in", nil
}

// Render executes the template for kind.
func (l *NoticeTemplateLoader) Render(kind NoticeKind, data NoticeData) (*RenderedNotice, error) {
	tmpl, ok := l.templates[kind]
	if !ok {
		return nil, fmt.Errorf("notice template %q not loaded", kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s notice: %w", kind, err)
	}

	subject, body, _ := strings.Cut(strings.TrimLeft(buf.String(), "\n"), "\n")
	subject = strings.TrimSpace(strings.TrimLeft(subject, "#"))
	if subject == "" {
		return nil, fmt.Errorf("%s notice renders an empty subject", kind)
	}

	return &RenderedNotice{
		Subject: subject,
		Body:    strings.TrimSpace(body),
	}, nil
}
