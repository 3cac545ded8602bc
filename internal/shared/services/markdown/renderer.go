// Package markdown renders operator-editable Markdown into HTML that is
// safe to embed in outgoing email.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Renderer interface {
	ToHTML(markdown string) (string, error)
	Sanitize(htmlContent string) string
	ToHTMLSanitized(markdown string) (string, error)
}

type renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewEmailRenderer returns a renderer for notice bodies. Bare URLs become
// links and only the tags mail clients render reliably survive sanitizing.
func NewEmailRenderer() Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	policy := bluemonday.NewPolicy()
	policy.AllowStandardURLs()
	policy.AllowAttrs("href").OnElements("a")
	policy.RequireNoFollowOnLinks(false)
	policy.AllowElements(
		"h1", "h2", "h3", "p", "br", "hr",
		"strong", "em", "del", "code",
		"ul", "ol", "li", "blockquote",
		"table", "thead", "tbody", "tr", "th", "td",
	)

	return &renderer{md: md, policy: policy}
}

func (r *renderer) ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return buf.String(), nil
}

func (r *renderer) Sanitize(htmlContent string) string {
	return r.policy.Sanitize(htmlContent)
}

func (r *renderer) ToHTMLSanitized(markdown string) (string, error) {
	out, err := r.ToHTML(markdown)
	if err != nil {
		return "", err
	}
	return r.Sanitize(out), nil
}
