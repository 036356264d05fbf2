// Package renderer renders stress testing reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templatesFS embed.FS

// templates holds the report templates, at the root of the FS.
var templates, _ = fs.Sub(templatesFS, "templates")

// RenderReport renders a stress report to a markdown string.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"result_title":   "result_title.md",
		"result_summary": "result_summary.md",
		"result_chart":   "result_chart.md",
		"result_rows":    "result_rows.md",
	}
	return renderTemplate("result", "result.md", partials, r)
}

// RenderScenarios renders the named scenarios to a markdown string.
func RenderScenarios(s *Scenarios) string {
	return renderTemplate("scenarios", "scenarios.md", nil, s)
}

// RenderPreview renders the first rows of a portfolio to a markdown string.
func RenderPreview(p *Preview) string {
	return renderTemplate("preview", "preview.md", nil, p)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
