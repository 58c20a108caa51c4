package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

// Page template names.
const (
	PageHome      = "home"
	PageCharacter = "character"
	PageSearch    = "search"
	PageNotFound  = "not_found"
	PageError     = "error"
)

// FragmentSearchResults is the partial the search page swaps in place.
const FragmentSearchResults = "search_results"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = []string{PageHome, PageCharacter, PageSearch, PageNotFound, PageError}

var funcs = template.FuncMap{
	"siteName": func() string { return siteName },
	"slug":     Slug,
}

// Renderer executes the embedded page templates. It is safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout and components.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		files := []string{"templates/layout.html", "templates/components.html", "templates/" + name + ".html"}
		if name == PageSearch {
			files = append(files, "templates/"+FragmentSearchResults+".html")
		}
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustNewRenderer is NewRenderer for package-level setup; embedded templates
// that fail to parse are a build defect.
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes the full document of page.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	return r.execute(w, page, "layout", data)
}

// RenderFragment writes a partial defined inside the search page set.
func (r *Renderer) RenderFragment(w io.Writer, fragment string, data any) error {
	return r.execute(w, PageSearch, fragment, data)
}

// RenderBytes renders page into memory, for snapshotting.
func (r *Renderer) RenderBytes(page string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, page, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) execute(w io.Writer, page, name string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	// Buffer so a failing template never leaves a half-written response.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s/%s: %w", page, name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static is the embedded asset tree served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Slug lowercases name and joins its words with dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
