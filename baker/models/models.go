// defines the data structures shared by the bake pipeline and templates
package models

import (
	"html/template"
	"time"
)

// PageKind distinguishes authored pages from synthesized listing pages.
type PageKind int

const (
	PageNormal PageKind = iota
	PageTagListing
	PageCategoryListing
)

func (k PageKind) String() string {
	switch k {
	case PageTagListing:
		return "tag"
	case PageCategoryListing:
		return "category"
	default:
		return "normal"
	}
}

// Post represents one dated content document of a blog stream.
type Post struct {
	Blog        string
	Title       string
	Slug        string
	Description string
	SourcePath  string
	URI         string
	Date        time.Time
	Tags        []string
	Category    string
	Excerpt     template.HTML
	HasMore     bool
}

// PostInfo is the per-run record entry for one processed post.
type PostInfo struct {
	Blog     string
	Tags     []string
	Category string
	WasBaked bool
}

// HasTag reports whether the post carries the given single tag.
func (pi PostInfo) HasTag(tag string) bool {
	for _, t := range pi.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PageDescriptor identifies one output document to bake.
type PageDescriptor struct {
	SourcePath   string
	URI          string
	Kind         PageKind
	Blog         string
	ContextValue string // tag key or category for listing pages
	PageNumber   int    // 1-based for multi-page listings
}

// RenderResult is what a page render reports back to the orchestrator.
type RenderResult struct {
	OutputPageCount int
	UsedPostData    bool
}

// PaginationData is the paginator exposed to templates. Any accessor that
// reveals post data flips the used flag, which feeds the page's
// depends-on-posts marker after the render.
type PaginationData struct {
	all      []Post
	window   []Post
	page     int
	total    int
	prevURI  string
	nextURI  string
	accessed bool
}

func NewPaginationData(window, all []Post, page, totalPages int, prevURI, nextURI string) *PaginationData {
	return &PaginationData{
		all:     all,
		window:  window,
		page:    page,
		total:   totalPages,
		prevURI: prevURI,
		nextURI: nextURI,
	}
}

func (p *PaginationData) Posts() []Post {
	p.accessed = true
	return p.window
}

func (p *PaginationData) AllPosts() []Post {
	p.accessed = true
	return p.all
}

func (p *PaginationData) PostCount() int {
	p.accessed = true
	return len(p.all)
}

func (p *PaginationData) PageNumber() int   { return p.page }
func (p *PaginationData) TotalPages() int   { return p.total }
func (p *PaginationData) HasPrevious() bool { return p.page > 1 }
func (p *PaginationData) HasNext() bool     { return p.nextURI != "" }
func (p *PaginationData) PreviousURI() string {
	p.accessed = true
	return p.prevURI
}
func (p *PaginationData) NextURI() string {
	p.accessed = true
	return p.nextURI
}

// Accessed reports whether a template touched post or pagination data.
func (p *PaginationData) Accessed() bool {
	if p == nil {
		return false
	}
	return p.accessed
}

// PageData is the context passed to HTML templates.
type PageData struct {
	Title       string
	TabTitle    string
	Description string
	BaseURL     string
	Permalink   string
	Content     template.HTML
	Meta        map[string]interface{}
	Blog        string
	Tag         string
	Category    string
	Posts       []Post
	Pagination  *PaginationData
	IsListing   bool

	// Config-driven fields (Menu, Author, etc.)
	Config interface{}
}
