// Package tmpl implements the TemplateRenderer capability that
// pkg/content consumes, backed by the standard library's text/template —
// the same engine the teacher repo uses for its own output formatting.
// Context values are handed to text/template unchanged: strings,
// integers, booleans, lists, maps and nil all render, and no check on
// value types is applied.
package tmpl

import (
	"strings"
	"sync"
	"text/template"

	"github.com/PaulYuuu/guisu/pkg/errors"
)

// Renderer implements content.TemplateRenderer. It caches compiled
// templates keyed by their source text, since the same source is often
// rendered repeatedly during a single pass; the cache permits concurrent
// readers and serializes writers.
type Renderer struct {
	mu    sync.RWMutex
	cache map[string]*template.Template
	funcs template.FuncMap
}

// New constructs a Renderer. funcs, if non-nil, is merged into every
// compiled template's function map; the core passes none itself (the
// function library is an out-of-scope caller concern per spec.md §1).
func New(funcs template.FuncMap) *Renderer {
	return &Renderer{
		cache: make(map[string]*template.Template),
		funcs: funcs,
	}
}

// Render implements content.TemplateRenderer.
func (r *Renderer) Render(text string, context map[string]interface{}) (string, error) {
	tmpl, err := r.compile(text)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, context); err != nil {
		return "", errors.Wrap(err, errors.ErrRender, "execute template")
	}
	return out.String(), nil
}

func (r *Renderer) compile(text string) (*template.Template, error) {
	r.mu.RLock()
	if t, ok := r.cache[text]; ok {
		r.mu.RUnlock()
		return t, nil
	}
	r.mu.RUnlock()

	t, err := template.New("entry").Option("missingkey=error").Funcs(r.funcs).Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRender, "parse template")
	}

	r.mu.Lock()
	r.cache[text] = t
	r.mu.Unlock()
	return t, nil
}
