package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/smallbiznis/gstbill/internal/invoice/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns a document view into a standalone HTML page.
type Renderer interface {
	RenderHTML(doc domain.DocumentView) (string, error)
}

type HTMLRenderer struct {
	templates map[domain.Template]*template.Template
}

func NewRenderer() (Renderer, error) {
	funcs := template.FuncMap{
		"formatDate": formatDate,
	}

	templates := make(map[domain.Template]*template.Template, 4)
	for _, name := range []domain.Template{
		domain.TemplateClassic,
		domain.TemplateModern,
		domain.TemplateCompact,
		domain.TemplateTransportSlip,
	} {
		tpl, err := template.New(string(name)).Funcs(funcs).ParseFS(templateFS,
			"templates/common.html",
			fmt.Sprintf("templates/%s.html", name),
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		templates[name] = tpl
	}

	return &HTMLRenderer{templates: templates}, nil
}

func (r *HTMLRenderer) RenderHTML(doc domain.DocumentView) (string, error) {
	tpl, ok := r.templates[doc.Template]
	if !ok {
		tpl = r.templates[domain.TemplateClassic]
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "document", doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatDate(value any) string {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return "-"
		}
		return v.UTC().Format("02-01-2006")
	case *time.Time:
		if v == nil {
			return "-"
		}
		return formatDate(*v)
	default:
		return "-"
	}
}
