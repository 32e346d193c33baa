// Package views renders the HTML pages of the agenda. Engine satisfies
// fiber.Views so handlers only name a template and pass a binding.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sync"
)

//go:embed templates/*.html
var embedded embed.FS

const layoutFile = "layout.html"

// Engine renders page templates composed with the shared layout.
type Engine struct {
	fsys fs.FS

	mu        sync.RWMutex
	loaded    bool
	templates map[string]*template.Template
}

// New returns an engine over the templates embedded in the binary.
func New() *Engine {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return NewFromFS(sub)
}

// NewFromFS returns an engine reading templates from the root of fsys.
func NewFromFS(fsys fs.FS) *Engine {
	return &Engine{fsys: fsys}
}

var funcs = template.FuncMap{
	// fieldErrors returns the messages for field, tolerating a missing map.
	"fieldErrors": func(errs map[string][]string, field string) []string {
		if errs == nil {
			return nil
		}
		return errs[field]
	},
	// sameID compares a record id with a raw form value.
	"sameID": func(id interface{}, raw interface{}) bool {
		return fmt.Sprint(id) == fmt.Sprint(raw)
	},
}

// Load parses every page template. It is called by fiber on startup and
// lazily by Render.
func (e *Engine) Load() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	layout, err := template.New(layoutFile).Funcs(funcs).ParseFS(e.fsys, layoutFile)
	if err != nil {
		return fmt.Errorf("failed to parse layout: %w", err)
	}

	pages, err := fs.Glob(e.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		if page == layoutFile {
			continue
		}
		base, err := layout.Clone()
		if err != nil {
			return fmt.Errorf("failed to clone layout for %s: %w", page, err)
		}
		tmpl, err := base.ParseFS(e.fsys, page)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	e.templates = templates
	e.loaded = true
	return nil
}

// Render writes the page called name. The name may omit the .html suffix.
// Layout arguments are ignored; every page uses the shared layout.
func (e *Engine) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	e.mu.RLock()
	loaded := e.loaded
	e.mu.RUnlock()
	if !loaded {
		if err := e.Load(); err != nil {
			return err
		}
	}

	if path.Ext(name) == "" {
		name += ".html"
	}

	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, layoutFile, binding)
}
