// ABOUTME: TemplateEngine parses the page templates from disk and renders them with html/template.
// ABOUTME: Load can be called again at runtime; a failed reload keeps the previously parsed set.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
)

// manifestoFile is the optional Markdown source for the manifesto section.
const manifestoFile = "manifesto.md"

// pages lists the templates rendered inside layout.html.
var pages = []string{
	"index.html",
}

// PageData holds the values substituted into a page.
type PageData struct {
	RenderTime     float64
	ServerLocation string
	Manifesto      template.HTML
	InstanceID     string
}

// Vars returns the named variables the templates read. Templates are parsed
// with missingkey=error, so a page that references a name absent here fails
// to render.
func (d PageData) Vars() map[string]any {
	return map[string]any{
		"render_time":     d.RenderTime,
		"server_location": d.ServerLocation,
		"manifesto":       d.Manifesto,
		"instance_id":     d.InstanceID,
	}
}

// TemplateEngine loads and renders HTML templates from a directory.
type TemplateEngine struct {
	templateDir string
	contentDir  string

	mu        sync.RWMutex
	templates map[string]*template.Template
	manifesto template.HTML
}

// templateFuncs returns the FuncMap available to all templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"ms":       func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"markdown": markdownToHTML,
		"upper":    strings.ToUpper,
	}
}

// NewTemplateEngine parses every page in templateDir and reads the optional
// manifesto from contentDir.
func NewTemplateEngine(templateDir, contentDir string) (*TemplateEngine, error) {
	e := &TemplateEngine{
		templateDir: templateDir,
		contentDir:  contentDir,
	}
	if err := e.Load(); err != nil {
		return nil, err
	}
	return e, nil
}

// Load re-parses all templates and the manifesto. On error the engine keeps
// serving what it had before.
func (e *TemplateEngine) Load() error {
	funcs := templateFuncs()
	parsed := make(map[string]*template.Template, len(pages))

	for _, page := range pages {
		t, err := template.New("layout.html").
			Funcs(funcs).
			Option("missingkey=error").
			ParseFiles(
				filepath.Join(e.templateDir, "layout.html"),
				filepath.Join(e.templateDir, page),
			)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", page, err)
		}
		parsed[page] = t
	}

	manifesto, err := e.readManifesto()
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.templates = parsed
	e.manifesto = manifesto
	e.mu.Unlock()
	return nil
}

func (e *TemplateEngine) readManifesto() (template.HTML, error) {
	if e.contentDir == "" {
		return "", nil
	}
	src, err := os.ReadFile(filepath.Join(e.contentDir, manifestoFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading manifesto: %w", err)
	}
	return markdownToHTML(string(src)), nil
}

// Manifesto returns the rendered manifesto HTML, or "" when none was found.
func (e *TemplateEngine) Manifesto() template.HTML {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.manifesto
}

// Render executes the named template with data into a buffer and, on
// success, writes it to w as text/html. Nothing is written on error.
func (e *TemplateEngine) Render(w http.ResponseWriter, name string, data map[string]any) error {
	var buf bytes.Buffer
	if err := e.RenderTo(&buf, name, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// RenderTo executes the named template with data and writes the result to
// an arbitrary io.Writer.
func (e *TemplateEngine) RenderTo(w io.Writer, name string, data map[string]any) error {
	e.mu.RLock()
	t, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return t.ExecuteTemplate(w, "layout.html", data)
}

// markdownToHTML converts trusted site copy from Markdown to HTML.
// Raw HTML in the input is dropped by goldmark's default renderer.
func markdownToHTML(input string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(input), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(buf.String())
}
