package run

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kettleworks/bake/baker/combine"
	"github.com/kettleworks/bake/baker/models"
	"github.com/kettleworks/bake/baker/paginate"
	"github.com/kettleworks/bake/baker/render"
)

// bakeTags rebuilds the tag listing pages whose content could have changed
// this run. The set of keys comes from expanding the changed tags against the
// configured and previously observed combinations; composite keys rendered
// here become permanently known.
func (b *Baker) bakeTags(ctx context.Context) error {
	if err := b.advance(statePagesBaked, stateTagsBaked); err != nil {
		return err
	}

	if !b.renderer.HasListingTemplate(models.PageTagListing) {
		return nil
	}

	configured := combine.ParseConfigured(
		append(append([]string{}, b.cfg.TagCombinations...), b.opts.TagCombinations...))

	for _, blog := range b.cfg.Blogs {
		changed := b.rec.TagsToBake(blog.Key)
		known := b.rec.KnownCombinations(blog.Key)
		keys := combine.Expand(changed, configured, known)

		rendered := 0
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			// A key with no matching post this run yields no listing and
			// stays out of the known combinations.
			posts := postsTagged(b.Posts(blog.Key), key)
			if len(posts) == 0 {
				continue
			}
			if err := b.renderListing(models.PageTagListing, blog.Key, key, posts); err != nil {
				return err
			}
			if strings.Contains(key, combine.Separator) {
				b.rec.AddTagCombination(blog.Key, key)
			}
			rendered++
		}
		if rendered > 0 {
			fmt.Printf("🏷️  %s: %d tag listings\n", blog.Key, rendered)
		}
	}
	return nil
}

// bakeCategories rebuilds the category listings touched by this run's baked
// posts. Categories have no combinations; one changed post in a category
// rebuilds that category's listing.
func (b *Baker) bakeCategories(ctx context.Context) error {
	if err := b.advance(stateTagsBaked, stateCategoriesBaked); err != nil {
		return err
	}

	if !b.renderer.HasListingTemplate(models.PageCategoryListing) {
		return nil
	}

	for _, blog := range b.cfg.Blogs {
		cats := b.rec.CategoriesToBake(blog.Key)
		for _, cat := range cats {
			if err := ctx.Err(); err != nil {
				return err
			}
			posts := postsInCategory(b.Posts(blog.Key), cat)
			if err := b.renderListing(models.PageCategoryListing, blog.Key, cat, posts); err != nil {
				return err
			}
		}
		if len(cats) > 0 {
			fmt.Printf("📂 %s: %d category listings\n", blog.Key, len(cats))
		}
	}
	return nil
}

// renderListing bakes every pagination window of one listing. A missing
// listing template silently skips the blog's listings.
func (b *Baker) renderListing(kind models.PageKind, blog, key string, posts []models.Post) error {
	base := "/" + blog + "/" + kind.String() + "/" + key

	for n := 1; n <= paginate.PageCount(len(posts), b.cfg.PostsPerPage); n++ {
		w, err := paginate.WindowOf(posts, n, b.cfg.PostsPerPage, base)
		if err != nil {
			return err
		}

		desc := models.PageDescriptor{
			URI:          base,
			Kind:         kind,
			Blog:         blog,
			ContextValue: key,
			PageNumber:   n,
		}
		data := models.PageData{
			Title:      key,
			TabTitle:   key + " | " + b.cfg.Title,
			BaseURL:    b.cfg.BaseURL,
			Permalink:  b.cfg.BaseURL + base,
			Blog:       blog,
			Posts:      w.Posts,
			Pagination: models.NewPaginationData(w.Posts, posts, n, w.TotalPages, w.PreviousURI, w.NextURI),
			IsListing:  true,
			Config:     b.cfg,
		}

		dest := uriToPath(base)
		if n > 1 {
			dest = uriToPath(fmt.Sprintf("%s/%d", base, n))
		}

		if _, err := b.renderer.RenderListing(desc, dest, data); err != nil {
			if errors.Is(err, render.ErrNoTemplate) {
				return nil
			}
			return err
		}
	}
	return nil
}

// postsTagged filters posts carrying every member tag of the key.
func postsTagged(posts []models.Post, key string) []models.Post {
	members := combine.Split(key)
	var out []models.Post
	for _, p := range posts {
		matches := true
		for _, m := range members {
			if !hasTag(p.Tags, m) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, p)
		}
	}
	return out
}

func postsInCategory(posts []models.Post, category string) []models.Post {
	var out []models.Post
	for _, p := range posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
