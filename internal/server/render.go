package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mateconpizza/sbm/internal/config"
	"github.com/mateconpizza/sbm/pkg/bookmark"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

const layoutFile = "templates/layout.gohtml"

var pageNames = []string{"login", "index", "admin", "api_docs"}

// parsePages parses each page together with the shared layout.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))

	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcMap()).
			ParseFS(templatesFS, layoutFile, "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parsing template %q: %w", name, err)
		}

		pages[name] = t
	}

	return pages, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"add":    func(a, b int) int { return a + b },
		"sub":    func(a, b int) int { return a - b },
		"join":   strings.Join,
		"domain": func(b *bookmark.Bookmark) string { return b.Domain() },
		"date": func(b *bookmark.Bookmark) string {
			t, ok := b.Created()
			if !ok {
				return ""
			}

			return t.Local().Format("2006-01-02")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}

			return *s
		},
		"year": func() int { return time.Now().Year() },
	}
}

// pageData is the data every page receives.
type pageData struct {
	App   config.AppInfo
	Title string
	User  any
	Data  any
}

// render executes a page into a buffer first, so a failing template never
// leaves a half written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	t, ok := s.pages[name]
	if !ok {
		http.Error(w, "template not found: "+name, http.StatusInternalServerError)
		return
	}

	pd := pageData{App: config.App, Title: title, Data: data}
	if u := userFrom(r.Context()); u != nil {
		pd.User = u
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", pd); err != nil {
		slog.Error("rendering page", "page", name, "error", err)
		http.Error(w, "Failed to render page: "+err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("writing page", "page", name, "error", err)
	}
}

func encode(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func encodeErr(w http.ResponseWriter, statusCode int, err string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err})
}
