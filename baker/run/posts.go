package run

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/kettleworks/bake/baker/config"
	"github.com/kettleworks/bake/baker/format"
	"github.com/kettleworks/bake/baker/models"
	"github.com/kettleworks/bake/baker/paginate"
	"github.com/kettleworks/bake/baker/record"
	"github.com/kettleworks/bake/baker/utils"
)

// bakePosts processes every blog's dated documents through the worker pool.
// Unchanged posts are hydrated from the record cache instead of re-rendered;
// either way the full post list for the run comes out of this phase.
func (b *Baker) bakePosts(ctx context.Context) error {
	if err := b.advance(stateGateChecked, statePostsBaked); err != nil {
		return err
	}

	lastBake := b.rec.LastBakeTime()

	for _, blog := range b.cfg.Blogs {
		exists, err := afero.DirExists(b.srcFs, blog.Dir)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}

		paths, err := paginate.ScanPostFiles(b.srcFs, blog.Dir)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", blog.Dir, err)
		}
		utils.SortPathsDescending(paths)

		var (
			mu      sync.Mutex
			posts   []models.Post
			entries []*record.PostEntry
			baked   int
		)

		pool := utils.NewWorkerPool(ctx, 0, func(path string) error {
			post, entry, wasBaked, err := b.bakeOnePost(blog, path, lastBake)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			posts = append(posts, post)
			if entry != nil {
				entries = append(entries, entry)
			}
			if wasBaked {
				baked++
			}
			b.rec.RecordPostInfo(blog.Key, post.Tags, post.Category, wasBaked)
			return nil
		})
		pool.Start()
		for _, p := range paths {
			pool.Submit(p)
		}
		if err := pool.Stop(); err != nil {
			return err
		}
		if err := b.manager.PutPostEntries(entries); err != nil {
			return fmt.Errorf("failed to cache posts: %w", err)
		}

		utils.SortPosts(posts)
		b.mu.Lock()
		b.posts[blog.Key] = posts
		b.mu.Unlock()

		fmt.Printf("🔨 %s: %d posts, %d baked\n", blog.Key, len(posts), baked)
	}

	return nil
}

// canSkipPost is the smart-mode decision for one source document.
func (b *Baker) canSkipPost(srcMtime, lastBake int64) bool {
	return b.opts.Smart && !b.noSkips && b.rec.Trusted() && srcMtime < lastBake
}

func (b *Baker) bakeOnePost(blog config.Blog, path string, lastBake int64) (models.Post, *record.PostEntry, bool, error) {
	info, err := b.srcFs.Stat(path)
	if err != nil {
		return models.Post{}, nil, false, err
	}
	mtime := info.ModTime().Unix()

	date, slug, ok := paginate.ParsePostFilename(filepath.Base(path))
	if !ok {
		return models.Post{}, nil, false, fmt.Errorf("not a dated post: %s", path)
	}
	uri := "/" + blog.Key + "/" + slug

	if b.canSkipPost(mtime, lastBake) {
		if entry, err := b.manager.GetPostEntry(path); err == nil && entry != nil && entry.ModTime == mtime {
			post, err := b.hydratePost(entry)
			if err == nil {
				return post, nil, false, nil
			}
		}
	}

	source, err := afero.ReadFile(b.srcFs, path)
	if err != nil {
		return models.Post{}, nil, false, err
	}

	formatter, err := b.registry.Resolve(filepath.Ext(path))
	if err != nil {
		return models.Post{}, nil, false, fmt.Errorf("%s: %w", path, err)
	}

	res, err := formatter.Convert(source, format.ConvertOptions{
		Blog:    blog.Key,
		BaseURL: b.cfg.BaseURL,
		ObserveLink: func(u string) {
			b.collector.Observe(blog.Key, u)
		},
	})
	if err != nil {
		return models.Post{}, nil, false, fmt.Errorf("failed to convert %s: %w", path, err)
	}

	title := utils.GetString(res.Meta, "title")
	if title == "" {
		title = strings.ReplaceAll(slug, "-", " ")
	}
	tags := make([]string, 0)
	for _, t := range utils.GetSlice(res.Meta, "tags") {
		if s := utils.Slugify(t); s != "" {
			tags = append(tags, s)
		}
	}
	tags = utils.UniqueStrings(tags)
	category := utils.Slugify(utils.GetString(res.Meta, "category"))

	description := utils.GetString(res.Meta, "description")
	if description == "" {
		if pt, ok := formatter.(plainTexter); ok {
			description = summarize(pt.ExtractPlainText(source))
		}
	}

	excerpt, hasMore := paginate.SplitExcerpt(string(res.HTML))

	post := models.Post{
		Blog:        blog.Key,
		Title:       title,
		Slug:        slug,
		Description: description,
		SourcePath:  utils.NormalizePath(path),
		URI:         uri,
		Date:        date,
		Tags:        tags,
		Category:    category,
		Excerpt:     template.HTML(excerpt),
		HasMore:     hasMore,
	}

	data := models.PageData{
		Title:       post.Title,
		TabTitle:    post.Title + " | " + b.cfg.Title,
		Description: post.Description,
		BaseURL:     b.cfg.BaseURL,
		Permalink:   b.cfg.BaseURL + uri,
		Content:     template.HTML(res.HTML),
		Meta:        res.Meta,
		Blog:        blog.Key,
		Config:      b.cfg,
	}
	if _, err := b.renderer.RenderPage(uriToPath(uri), data); err != nil {
		return models.Post{}, nil, false, err
	}

	entry := &record.PostEntry{
		Path:        post.SourcePath,
		Blog:        blog.Key,
		ModTime:     mtime,
		Title:       post.Title,
		Slug:        slug,
		Description: post.Description,
		Date:        date,
		Tags:        tags,
		Category:    category,
		URI:         uri,
		HasMore:     hasMore,
	}
	if err := b.manager.StoreExcerpt(entry, []byte(excerpt)); err != nil {
		return models.Post{}, nil, false, err
	}

	return post, entry, true, nil
}

// hydratePost rebuilds a Post from its cached entry without touching the
// source document.
func (b *Baker) hydratePost(entry *record.PostEntry) (models.Post, error) {
	excerpt, err := b.manager.GetExcerpt(entry)
	if err != nil {
		return models.Post{}, err
	}
	return models.Post{
		Blog:        entry.Blog,
		Title:       entry.Title,
		Slug:        entry.Slug,
		Description: entry.Description,
		SourcePath:  entry.Path,
		URI:         entry.URI,
		Date:        entry.Date,
		Tags:        entry.Tags,
		Category:    entry.Category,
		Excerpt:     template.HTML(excerpt),
		HasMore:     entry.HasMore,
	}, nil
}

// plainTexter is the optional formatter capability behind description
// fallbacks.
type plainTexter interface {
	ExtractPlainText(source []byte) string
}

const maxDescriptionLen = 160

// summarize collapses whitespace and trims to a word boundary.
func summarize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxDescriptionLen {
		return text
	}
	cut := strings.LastIndex(text[:maxDescriptionLen], " ")
	if cut <= 0 {
		cut = maxDescriptionLen
	}
	return text[:cut] + "..."
}

// uriToPath maps a site URI to its output file path.
func uriToPath(uri string) string {
	trimmed := strings.Trim(uri, "/")
	if trimmed == "" {
		return "index.html"
	}
	return filepath.Join(filepath.FromSlash(trimmed), "index.html")
}
