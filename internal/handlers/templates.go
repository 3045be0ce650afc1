package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"exam-docs/internal/views"

	"go.uber.org/zap"
)

// Renderer executes the embedded print templates.
type Renderer struct {
	templates *template.Template
	log       *zap.Logger
}

// NewRenderer parses every template up front so a broken template fails
// startup instead of a request.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	return newRenderer(views.TemplatesFS, logger)
}

func newRenderer(fsys fs.FS, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}
	var templateFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			templateFiles = append(templateFiles, entry.Name())
		}
	}
	if len(templateFiles) == 0 {
		return nil, fmt.Errorf("no template files found in embedded filesystem")
	}
	logger.Debug("template files found", zap.Strings("files", templateFiles))

	funcMap := template.FuncMap{
		"urlquery": url.QueryEscape,
		"inc": func(i int) int {
			return i + 1
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{templates: templates, log: logger}, nil
}

// Execute writes the named template to w. The output is buffered, so w
// receives either the whole document or nothing.
func (rd *Renderer) Execute(w io.Writer, name string, data interface{}) error {
	if rd.templates.Lookup(name) == nil {
		return fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Render executes the page template into a buffer first, so a failing
// template never leaves half a document on the wire.
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, data interface{}) {
	if rd.templates.Lookup(name) == nil {
		rd.log.Error("template not found", zap.String("template", name))
		http.Error(w, fmt.Sprintf("Template '%s' not found", name), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, name, data); err != nil {
		rd.log.Error("template execute error", zap.String("template", name), zap.Error(err))
		http.Error(w, fmt.Sprintf("Template execute error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rd.log.Debug("client went away while writing page", zap.String("template", name), zap.Error(err))
	}
}
