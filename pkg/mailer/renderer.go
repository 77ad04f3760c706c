package mailer

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// fallbackTemplate is used when no template exists for a given id.
const fallbackTemplate = "notification"

// Renderer produces the HTML and plain-text bodies of a notification email.
type Renderer interface {
	Render(templateID string, data map[string]interface{}) (html, text string, err error)
}

// TemplateRenderer renders embedded html/template and text/template pairs.
// Template ids map to templates/<id>.html and templates/<id>.txt; unknown
// ids fall back to the generic notification pair.
type TemplateRenderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewTemplateRenderer parses the embedded templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &TemplateRenderer{html: html, text: text}, nil
}

func (r *TemplateRenderer) Render(templateID string, data map[string]interface{}) (string, string, error) {
	htmlName := templateID + ".html"
	textName := templateID + ".txt"
	if r.html.Lookup(htmlName) == nil || r.text.Lookup(textName) == nil {
		htmlName = fallbackTemplate + ".html"
		textName = fallbackTemplate + ".txt"
	}

	var html strings.Builder
	if err := r.html.ExecuteTemplate(&html, htmlName, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", htmlName, err)
	}
	var text strings.Builder
	if err := r.text.ExecuteTemplate(&text, textName, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", textName, err)
	}
	return html.String(), text.String(), nil
}
