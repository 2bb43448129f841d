package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/medistock/medistock/web"
)

const (
	baseLayout  = "base"
	printLayout = "print"
	pdfLayout   = "pdf"
)

// Engine renders HTML templates. Every page is parsed into its own clone of
// the layouts and partials so pages can share block names.
type Engine struct {
	pages map[string]*template.Template
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	return NewEngineFS(web.Templates, "templates")
}

// NewEngineFS parses templates below root in fsys.
func NewEngineFS(fsys fs.FS, root string) (*Engine, error) {
	shared := template.New("root").Funcs(Funcs())
	var pages []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		name := strings.TrimPrefix(p, root+"/")
		if strings.HasPrefix(name, "pages/") {
			pages = append(pages, p)
			return nil
		}
		return parseFile(shared, fsys, p, name)
	})
	if err != nil {
		return nil, fmt.Errorf("view: parse layouts: %w", err)
	}

	e := &Engine{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		name := strings.TrimPrefix(p, root+"/")
		tpl, err := shared.Clone()
		if err != nil {
			return nil, fmt.Errorf("view: clone for %s: %w", name, err)
		}
		if err := parseFile(tpl, fsys, p, name); err != nil {
			return nil, err
		}
		e.pages[name] = tpl
	}
	return e, nil
}

func parseFile(tpl *template.Template, fsys fs.FS, p, name string) error {
	content, err := fs.ReadFile(fsys, p)
	if err != nil {
		return fmt.Errorf("view: read %s: %w", name, err)
	}
	if _, err := tpl.New(name).Parse(string(content)); err != nil {
		return fmt.Errorf("view: parse %s: %w", name, err)
	}
	return nil
}

// Has reports whether a page template exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.pages[name]
	return ok
}

// Render executes a page inside the base layout. Output is buffered so a
// template error never leaves a half-written page behind.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data TemplateData) error {
	return e.execute(w, status, name, baseLayout, data)
}

// RenderPrint executes a page inside the print layout.
func (e *Engine) RenderPrint(w http.ResponseWriter, status int, name string, data TemplateData) error {
	return e.execute(w, status, name, printLayout, data)
}

// RenderString executes a page inside the given layout and returns the HTML.
// It backs PDF conversion, which needs a complete document.
func (e *Engine) RenderString(name, layout string, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := e.executeTo(&buf, name, layout, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderPDF executes a page inside the self-contained pdf layout, which links
// its stylesheet relatively so the converter can resolve it.
func (e *Engine) RenderPDF(name string, data TemplateData) (string, error) {
	return e.RenderString(name, pdfLayout, data)
}

// Partial executes a named block (e.g. a drawer body) against data.
func (e *Engine) Partial(page, block string, data any) (template.HTML, error) {
	tpl, ok := e.lookup(page)
	if !ok {
		return "", fmt.Errorf("view: template %q not found", page)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, block, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (e *Engine) execute(w http.ResponseWriter, status int, name, layout string, data TemplateData) error {
	var buf bytes.Buffer
	if err := e.executeTo(&buf, name, layout, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (e *Engine) executeTo(buf *bytes.Buffer, name, layout string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, ok := e.lookup(name)
	if !ok {
		return fmt.Errorf("view: template %q not found", name)
	}
	return tpl.ExecuteTemplate(buf, layout, data)
}

func (e *Engine) lookup(name string) (*template.Template, bool) {
	tpl, ok := e.pages[name]
	return tpl, ok
}
