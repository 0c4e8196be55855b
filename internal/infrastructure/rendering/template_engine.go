package rendering

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/ipms/backend/internal/domain/report"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders report data into the HTML document consumed by
// the PDF renderer. It uses Go's html/template package with custom
// formatting functions.
type TemplateEngine struct {
	tmpl *template.Template
}

// NewTemplateEngine creates a template engine with the built-in report template
func NewTemplateEngine() (*TemplateEngine, error) {
	funcMap := template.FuncMap{
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"title":          titleCase,
		"upper":          strings.ToUpper,
		"lower":          strings.ToLower,
		"add":            func(a, b int) int { return a + b },
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(defaultReportTemplate)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to parse report template", err)
	}
	return &TemplateEngine{tmpl: tmpl}, nil
}

// RenderHTML binds the report data into the HTML template
func (e *TemplateEngine) RenderHTML(data *report.ReportData) (string, error) {
	if data == nil {
		return "", NewRenderError(ErrCodeInvalidData, "report data is nil", nil)
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "template execution failed", err)
	}
	return buf.String(), nil
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
