// Package run is the incremental bake orchestrator. It owns the fixed phase
// order (gate, posts, pages, tags, categories, persist) and the decisions
// about what can be skipped.
package run

import (
	"fmt"
	"sync"

	"github.com/spf13/afero"

	"github.com/kettleworks/bake/baker/config"
	"github.com/kettleworks/bake/baker/format"
	"github.com/kettleworks/bake/baker/models"
	"github.com/kettleworks/bake/baker/record"
	"github.com/kettleworks/bake/baker/render"
)

// Baker drives one bake run over a site. It is single-use: create, Bake,
// Close.
type Baker struct {
	cfg  *config.Config
	opts config.RunOptions

	srcFs  afero.Fs
	destFs afero.Fs

	manager   *record.Manager
	rec       *record.Record
	registry  *format.Registry
	renderer  *render.Renderer
	collector *format.LinkCollector

	state bakeState

	// noSkips is set after a purge so every document bakes fresh this run.
	noSkips bool

	mu    sync.Mutex
	posts map[string][]models.Post // blogKey -> this run's full post list
}

// NewBaker wires a baker over the given source filesystem. The record
// database always lives on the OS filesystem under the cache directory.
func NewBaker(cfg *config.Config, opts config.RunOptions, srcFs afero.Fs) (*Baker, error) {
	if err := cfg.ApplyVariant(opts.Variant); err != nil {
		return nil, err
	}

	manager, err := record.Open(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	destFs := afero.NewBasePathFs(srcFs, cfg.OutputDir)
	if err := srcFs.MkdirAll(cfg.OutputDir, 0755); err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	renderer, err := render.New(srcFs, destFs, cfg.TemplateDir, opts.Minify)
	if err != nil {
		_ = manager.Close()
		return nil, err
	}

	return &Baker{
		cfg:       cfg,
		opts:      opts,
		srcFs:     srcFs,
		destFs:    destFs,
		manager:   manager,
		rec:       manager.LoadRecord(),
		registry:  format.DefaultRegistry(),
		renderer:  renderer,
		collector: format.NewLinkCollector(),
		state:     stateIdle,
		posts:     make(map[string][]models.Post),
	}, nil
}

// Close releases the record database.
func (b *Baker) Close() error {
	return b.manager.Close()
}

// Record exposes the in-memory record, mainly for inspection in tests.
func (b *Baker) Record() *record.Record {
	return b.rec
}

// Posts returns this run's full post list for a blog, newest first.
func (b *Baker) Posts(blog string) []models.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.posts[blog]
}

func (b *Baker) allPosts() []models.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	var all []models.Post
	for _, posts := range b.posts {
		all = append(all, posts...)
	}
	return all
}

func (b *Baker) printInfo() {
	fmt.Printf("📋 Bake paths\n")
	fmt.Printf("   pages:     %s\n", b.cfg.PagesDir)
	fmt.Printf("   templates: %s\n", b.cfg.TemplateDir)
	fmt.Printf("   static:    %s\n", b.cfg.StaticDir)
	fmt.Printf("   output:    %s\n", b.cfg.OutputDir)
	fmt.Printf("   cache:     %s\n", b.cfg.CacheDir)
	for _, blog := range b.cfg.Blogs {
		fmt.Printf("   blog %q:   %s\n", blog.Key, blog.Dir)
	}
}
