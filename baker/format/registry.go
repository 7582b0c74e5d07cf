// Package format provides the pluggable source-to-markup formatters and the
// registry the bake pipeline resolves them from.
package format

import (
	"fmt"
	"strings"
)

// Result is the outcome of one document conversion.
type Result struct {
	HTML []byte
	Meta map[string]interface{}
}

// ConvertOptions carries per-conversion context into a formatter.
type ConvertOptions struct {
	Blog    string
	BaseURL string
	// ObserveLink is invoked for every internal link destination found in
	// the document, feeding composite-tag combination discovery.
	ObserveLink func(uri string)
}

// Formatter converts one source document into rendered markup.
type Formatter interface {
	Name() string
	Extensions() []string
	// Exclusive marks the formatter as the sole handler for its extensions.
	// Resolution requires exactly one exclusive handler per format.
	Exclusive() bool
	Convert(source []byte, opts ConvertOptions) (Result, error)
}

// Registry resolves formatters by source file extension.
type Registry struct {
	byExt map[string][]Formatter
}

func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string][]Formatter)}
}

// Register adds a formatter under each of the extension keys it claims.
func (r *Registry) Register(f Formatter) {
	for _, ext := range f.Extensions() {
		ext = normalizeExt(ext)
		r.byExt[ext] = append(r.byExt[ext], f)
	}
}

// Resolve returns the exclusive handler for the extension. No exclusive
// handler is a fatal configuration problem for the document being baked.
func (r *Registry) Resolve(ext string) (Formatter, error) {
	ext = normalizeExt(ext)
	for _, f := range r.byExt[ext] {
		if f.Exclusive() {
			return f, nil
		}
	}
	return nil, fmt.Errorf("no exclusive formatter registered for %q", ext)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DefaultRegistry returns a registry with the built-in markdown formatter.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewMarkdown())
	return r
}
