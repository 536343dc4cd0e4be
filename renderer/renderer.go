// Package renderer turns query results into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// RenderStats renders the database statistics report to a markdown string.
func RenderStats(r *StatsReport) string {
	partials := map[string]string{
		"stats_tables": "templates/stats_tables.md",
		"stats_loads":  "templates/stats_loads.md",
	}
	return renderTemplate("stats", "templates/stats.md", partials, r)
}

// RenderSearch renders a company search result to a markdown string.
func RenderSearch(r *SearchReport) string {
	partials := map[string]string{
		"search_results": "templates/search_results.md",
	}
	return renderTemplate("search", "templates/search.md", partials, r)
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
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
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
