// Handles template loading and output file creation
package render

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minhtml "github.com/tdewolff/minify/v2/html"
	minjs "github.com/tdewolff/minify/v2/js"

	"github.com/kettleworks/bake/baker/models"
)

// ErrNoTemplate marks an absent optional template. Listing generation for a
// blog is silently skipped when its template is missing.
var ErrNoTemplate = errors.New("template not present")

// Renderer executes the site templates onto the destination filesystem.
type Renderer struct {
	layout   *template.Template
	index    *template.Template
	tag      *template.Template
	category *template.Template

	destFs   afero.Fs
	minifier *minify.M
	compress bool
}

// New loads templates from templateDir on the source filesystem. The layout
// template is required; index/tag/category templates are optional.
func New(sourceFs, destFs afero.Fs, templateDir string, compress bool) (*Renderer, error) {
	funcMap := template.FuncMap{
		"lower":     strings.ToLower,
		"hasPrefix": strings.HasPrefix,
		"now":       time.Now,
	}

	layout, err := parseTemplate(sourceFs, templateDir, "layout.html", funcMap)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout template: %w", err)
	}

	r := &Renderer{
		layout:   layout,
		destFs:   destFs,
		compress: compress,
	}

	// Optional templates: absence is tolerated, not an error.
	r.index, _ = parseTemplate(sourceFs, templateDir, "index.html", funcMap)
	r.tag, _ = parseTemplate(sourceFs, templateDir, "tag.html", funcMap)
	r.category, _ = parseTemplate(sourceFs, templateDir, "category.html", funcMap)

	if compress {
		m := minify.New()
		m.AddFunc("text/html", minhtml.Minify)
		m.AddFunc("text/css", mincss.Minify)
		m.AddFunc("text/javascript", minjs.Minify)
		r.minifier = m
	}

	return r, nil
}

func parseTemplate(fsys afero.Fs, dir, name string, funcMap template.FuncMap) (*template.Template, error) {
	data, err := afero.ReadFile(fsys, filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(funcMap).Parse(string(data))
}

// HasListingTemplate reports whether the template for a listing kind exists.
func (r *Renderer) HasListingTemplate(kind models.PageKind) bool {
	switch kind {
	case models.PageTagListing:
		return r.tag != nil
	case models.PageCategoryListing:
		return r.category != nil
	default:
		return true
	}
}

// RenderPage renders an ordinary page or post through the layout template.
// The result reports whether the template touched post or pagination data.
func (r *Renderer) RenderPage(destPath string, data models.PageData) (models.RenderResult, error) {
	if err := r.execute(r.layout, destPath, data); err != nil {
		return models.RenderResult{}, err
	}
	return models.RenderResult{
		OutputPageCount: 1,
		UsedPostData:    data.Pagination.Accessed(),
	}, nil
}

// RenderListing renders one synthesized listing window. The descriptor
// selects the template and carries the listing key into the page data.
func (r *Renderer) RenderListing(desc models.PageDescriptor, destPath string, data models.PageData) (models.RenderResult, error) {
	var tmpl *template.Template
	switch desc.Kind {
	case models.PageTagListing:
		tmpl = r.tag
		data.Tag = desc.ContextValue
	case models.PageCategoryListing:
		tmpl = r.category
		data.Category = desc.ContextValue
	default:
		tmpl = r.index
		if tmpl == nil {
			tmpl = r.layout
		}
	}
	if tmpl == nil {
		return models.RenderResult{}, ErrNoTemplate
	}

	if err := r.execute(tmpl, destPath, data); err != nil {
		return models.RenderResult{}, err
	}
	return models.RenderResult{
		OutputPageCount: 1,
		UsedPostData:    data.Pagination.Accessed(),
	}, nil
}

func (r *Renderer) execute(tmpl *template.Template, destPath string, data models.PageData) error {
	if err := r.destFs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}

	f, err := r.destFs.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	if r.compress && r.minifier != nil {
		mw := r.minifier.Writer("text/html", f)
		defer func() { _ = mw.Close() }()
		w = mw
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", destPath, err)
	}
	return nil
}
