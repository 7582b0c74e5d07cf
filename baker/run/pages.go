package run

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/kettleworks/bake/baker/format"
	"github.com/kettleworks/bake/baker/models"
	"github.com/kettleworks/bake/baker/paginate"
	"github.com/kettleworks/bake/baker/utils"
)

// bakePages processes the authored (non-dated) pages. A page rebuilds when
// its own source changed, or when any post was baked this run and the page
// was recorded as depending on post data.
func (b *Baker) bakePages(ctx context.Context) error {
	if err := b.advance(statePostsBaked, statePagesBaked); err != nil {
		return err
	}

	exists, err := afero.DirExists(b.srcFs, b.cfg.PagesDir)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	var paths []string
	err = afero.Walk(b.srcFs, b.cfg.PagesDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	lastBake := b.rec.LastBakeTime()
	anyBaked := b.rec.AnyPostWasBaked()

	var (
		mu    sync.Mutex
		baked int
	)

	pool := utils.NewWorkerPool(ctx, 0, func(path string) error {
		wasBaked, err := b.bakeOnePage(path, lastBake, anyBaked)
		if err != nil {
			return err
		}
		if wasBaked {
			mu.Lock()
			baked++
			mu.Unlock()
		}
		return nil
	})
	pool.Start()
	for _, p := range paths {
		pool.Submit(p)
	}
	if err := pool.Stop(); err != nil {
		return err
	}
	if baked > 0 {
		fmt.Printf("📄 %d pages baked\n", baked)
	}
	return nil
}

func (b *Baker) bakeOnePage(path string, lastBake int64, anyBaked bool) (bool, error) {
	info, err := b.srcFs.Stat(path)
	if err != nil {
		return false, err
	}
	mtime := info.ModTime().Unix()
	pageID := utils.NormalizePath(path)

	needs := !b.opts.Smart || b.noSkips || !b.rec.Trusted() || mtime >= lastBake
	if !needs && anyBaked && b.rec.PageDependsOnPosts(pageID) {
		needs = true
	}
	if !needs {
		return false, nil
	}

	source, err := afero.ReadFile(b.srcFs, path)
	if err != nil {
		return false, err
	}

	formatter, err := b.registry.Resolve(filepath.Ext(path))
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	uri := b.pageURI(path)
	blogKey := b.cfg.Blogs[0].Key

	res, err := formatter.Convert(source, format.ConvertOptions{
		Blog:    blogKey,
		BaseURL: b.cfg.BaseURL,
		ObserveLink: func(u string) {
			b.collector.Observe(blogKey, u)
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to convert %s: %w", path, err)
	}

	if k := utils.GetString(res.Meta, "blog"); k != "" {
		blogKey = k
	}
	all := b.Posts(blogKey)

	title := utils.GetString(res.Meta, "title")
	if title == "" {
		title = b.cfg.Title
	}

	// The site root paginates at /2, /3, ... so the base URI drops the slash.
	base := uri
	if base == "/" {
		base = ""
	}

	paginated := utils.GetBool(res.Meta, "paginate")

	used := false
	renderWindow := func(pageNumber int) error {
		w, err := paginate.WindowOf(all, pageNumber, b.cfg.PostsPerPage, base)
		if err != nil {
			return err
		}
		pd := models.NewPaginationData(w.Posts, all, pageNumber, w.TotalPages, w.PreviousURI, w.NextURI)
		data := models.PageData{
			Title:       title,
			TabTitle:    title + " | " + b.cfg.Title,
			Description: utils.GetString(res.Meta, "description"),
			BaseURL:     b.cfg.BaseURL,
			Permalink:   b.cfg.BaseURL + uri,
			Content:     template.HTML(res.HTML),
			Meta:        res.Meta,
			Blog:        blogKey,
			Posts:       w.Posts,
			Pagination:  pd,
			Config:      b.cfg,
		}
		dest := uriToPath(uri)
		if pageNumber > 1 {
			dest = uriToPath(fmt.Sprintf("%s/%d", base, pageNumber))
		}

		// Paginated pages render through the index listing template so their
		// templates can walk the post windows.
		var result models.RenderResult
		if paginated {
			desc := models.PageDescriptor{
				SourcePath: path,
				URI:        uri,
				Kind:       models.PageNormal,
				Blog:       blogKey,
				PageNumber: pageNumber,
			}
			result, err = b.renderer.RenderListing(desc, dest, data)
		} else {
			result, err = b.renderer.RenderPage(dest, data)
		}
		if err != nil {
			return err
		}
		used = used || result.UsedPostData
		return nil
	}

	if paginated {
		for n := 1; n <= paginate.PageCount(len(all), b.cfg.PostsPerPage); n++ {
			if err := renderWindow(n); err != nil {
				return false, err
			}
		}
	} else {
		if err := renderWindow(1); err != nil {
			return false, err
		}
	}

	if used {
		b.rec.MarkPageDependsOnPosts(pageID)
	}
	return true, nil
}

// pageURI maps a page source path to its output URI. pages/index.md is the
// site root; everything else mirrors its relative path without extension.
func (b *Baker) pageURI(path string) string {
	rel, err := filepath.Rel(b.cfg.PagesDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	if rel == "index" || rel == "" {
		return "/"
	}
	return "/" + strings.TrimSuffix(rel, "/index")
}
