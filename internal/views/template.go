package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/rahul4469/medi-buddy/internal/models"
)

// Template wraps a parsed template with helper methods for rendering.
type Template struct {
	tmpl *template.Template
	nav  []NavLink
	dev  bool
}

// TemplateData is the standard data structure passed to all templates.
// It contains common fields that every page might need.
type TemplateData struct {
	// CSRF token for forms and for the page script
	CSRFToken string

	// Flash message, shown above the page content
	Warning string

	// Page-specific data
	Data interface{}

	// Additional metadata
	Title string

	// Request info, filled in by ExecuteHTTP
	CurrentPath string
	Nav         []NavLink

	// Page script settings
	ScrollThreshold int
	FallbackMessage string

	// Environment, filled in by ExecuteHTTP
	IsDevelopment bool
}

// DefaultFuncMap returns the default template functions available in all templates.
func DefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		// String manipulation
		"title": toTitle,

		// Date/time formatting
		"formatDateTime": formatDateTime,
		"timeAgo":        timeAgo,

		// Number formatting
		"formatNumber": formatNumber,
		"percentage":   percentage,

		// Banner styling
		"toneClass": toneClass,
	}
}

// ParseFS parses templates from fsys.
// It automatically includes the base layout and any partials.
//
// Usage:
//
//	tmpl, err := views.ParseFS(templates.FS, "pages/home.gohtml")
//	// This will parse:
//	// - layouts/base.gohtml
//	// - partials/*.gohtml
//	// - pages/home.gohtml
func ParseFS(fsys fs.FS, patterns ...string) (*Template, error) {
	// Start with function map
	tmpl := template.New("").Funcs(DefaultFuncMap())

	// Parse base layout first
	basePath := "layouts/base.gohtml"
	baseContent, err := fs.ReadFile(fsys, basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read base template: %w", err)
	}

	tmpl, err = tmpl.Parse(string(baseContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	// Parse all partials - they define their own names with {{define "name"}}
	partialMatches, err := fs.Glob(fsys, "partials/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to glob partials: %w", err)
	}

	for _, match := range partialMatches {
		content, err := fs.ReadFile(fsys, match)
		if err != nil {
			return nil, fmt.Errorf("failed to read partial %s: %w", match, err)
		}

		tmpl, err = tmpl.Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse partial %s: %w", match, err)
		}
	}

	// Parse the requested page templates - they define their own "content" block
	for _, pattern := range patterns {
		content, err := fs.ReadFile(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", pattern, err)
		}

		tmpl, err = tmpl.Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", pattern, err)
		}
	}

	return &Template{tmpl: tmpl}, nil
}

// WithNav sets the navigation links rendered in the layout sidebar.
func (t *Template) WithNav(links []NavLink) *Template {
	t.nav = links
	return t
}

// WithDevelopment marks pages rendered by t as coming from a development
// build.
func (t *Template) WithDevelopment(dev bool) *Template {
	t.dev = dev
	return t
}

// Execute renders the template to the given writer with the provided data.
func (t *Template) Execute(w io.Writer, data *TemplateData) error {
	return t.tmpl.ExecuteTemplate(w, "base", data)
}

// ExecuteHTTP renders the template as an HTTP response.
// It handles errors gracefully and sets appropriate headers.
func (t *Template) ExecuteHTTP(w http.ResponseWriter, r *http.Request, data *TemplateData) {
	t.ExecuteHTTPWithStatus(w, r, http.StatusOK, data)
}

// ExecuteHTTPWithStatus renders the template with a custom HTTP status code.
func (t *Template) ExecuteHTTPWithStatus(w http.ResponseWriter, r *http.Request, status int, data *TemplateData) {
	if data == nil {
		data = &TemplateData{}
	}
	data.CurrentPath = r.URL.Path
	data.Nav = HighlightNav(t.nav, r.URL.Path)
	data.ScrollThreshold = ScrollThreshold
	data.FallbackMessage = models.FallbackMessage
	data.IsDevelopment = t.dev

	// Render to buffer first to catch errors
	buf := &bytes.Buffer{}
	err := t.Execute(buf, data)
	if err != nil {
		log.Printf("Template execution error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Template function implementations

// toTitle converts a string to title case.
// Example: "hello world" -> "Hello World"
func toTitle(s string) string {
	if s == "" {
		return s
	}
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

func formatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}

func timeAgo(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return formatDateTime(t)
	}
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

func percentage(value, total int) int {
	if total == 0 {
		return 0
	}
	return (value * 100) / total
}

func toneClass(tone models.Tone) string {
	return tone.AlertClass()
}
