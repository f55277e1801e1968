// Package web renders the HTML views for the playlist generator.
//
// Templates are embedded at build time and parsed once at startup. The
// [Renderer] takes a view name plus a data context, mirroring how handlers
// hand off rendering without knowing template details.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders named views against a shared template set.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded template set.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render writes the named view with the given data context.
//
// The status is written before the body, so template execution errors past
// that point can only be logged by the caller, not turned into a clean error
// response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
