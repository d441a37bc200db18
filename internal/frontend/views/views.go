// Package views holds the embedded page templates and a gin HTML renderer
// that executes each page inside the shared layout.
package views

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templates embed.FS

// Page names accepted by Renderer.
const (
	PageHome      = "home"
	PageDashboard = "dashboard"
	PageLogin     = "login"
	PageSignup    = "signup"
	PageNotFound  = "notfound"
)

var pages = []string{PageHome, PageDashboard, PageLogin, PageSignup, PageNotFound}

// Renderer implements gin's render.HTMLRender.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout.html").ParseFS(templates, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templates, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		t = r.pages[PageNotFound]
	}
	return render.HTML{Template: t, Name: "layout.html", Data: data}
}
