package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dukerupert/roster/internal/attendance"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookie = "flash"

// Views renders the embedded page templates.
type Views struct {
	templates *template.Template
	logger    *slog.Logger
}

func NewViews(logger *slog.Logger) *Views {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"highlight": highlight,
		"status":    func(s attendance.Status) string { return string(s) },
	}).ParseFS(templateFS, "templates/*.html"))
	return &Views{templates: tmpl, logger: logger}
}

// render executes the named page into a buffer first so a template error
// never leaves a half-written 200 behind. Any pending flash message is
// consumed and exposed to the page as .Flash.
func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["Flash"] = popFlash(w, r)

	var buf bytes.Buffer
	if err := v.templates.ExecuteTemplate(&buf, name, data); err != nil {
		v.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// highlight HTML-escapes text and wraps each occurrence of keyword in <mark>.
func highlight(text, keyword string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	if keyword == "" {
		return template.HTML(escaped)
	}
	kw := template.HTMLEscapeString(keyword)
	return template.HTML(strings.ReplaceAll(escaped, kw, "<mark>"+kw+"</mark>"))
}

func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}
