package run

import (
	"context"
	"fmt"
	"time"

	"github.com/kettleworks/bake/baker/assets"
	"github.com/kettleworks/bake/baker/generators"
	"github.com/kettleworks/bake/baker/utils"
)

// Bake executes one full run: gate, posts, pages, tag and category listings,
// site artifacts, assets, then record persistence. Any error aborts the run
// before persistence, so the next run sees the old record and redoes the
// work.
func (b *Baker) Bake(ctx context.Context) error {
	if b.opts.InfoOnly {
		b.printInfo()
		return nil
	}

	start := time.Now()

	if err := b.checkGate(); err != nil {
		return err
	}
	if err := b.bakePosts(ctx); err != nil {
		return err
	}
	if err := b.bakePages(ctx); err != nil {
		return err
	}

	// Composite keys observed in page links become known combinations before
	// the tag phase expands them.
	b.rec.CollectTagCombinations(b.collector)

	if err := b.bakeTags(ctx); err != nil {
		return err
	}
	if err := b.bakeCategories(ctx); err != nil {
		return err
	}

	if err := b.writeArtifacts(); err != nil {
		return err
	}

	if b.opts.CopyAssets {
		copied, err := assets.Copy(b.srcFs, b.destFs, b.cfg.StaticDir, assets.Options{
			SkipPatterns:  b.opts.SkipPatterns,
			ForcePatterns: b.opts.ForcePatterns,
			Minify:        b.opts.Minify,
		})
		if err != nil {
			return fmt.Errorf("asset pass failed: %w", err)
		}
		if copied > 0 {
			fmt.Printf("🎨 %d assets copied\n", copied)
		}
	}

	if err := b.persist(start); err != nil {
		return err
	}

	fmt.Printf("✨ Baked in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// writeArtifacts emits the site-wide XML outputs from the full post list.
func (b *Baker) writeArtifacts() error {
	all := b.allPosts()
	utils.SortPosts(all)

	if err := generators.WriteSitemap(b.destFs, b.cfg.BaseURL, all); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}
	if err := generators.WriteRSS(b.destFs, b.cfg.Title, b.cfg.Description, b.cfg.BaseURL, all); err != nil {
		return fmt.Errorf("failed to write rss feed: %w", err)
	}
	return nil
}

// persist stamps the record with the run's start time, so documents modified
// while baking still look changed next run.
func (b *Baker) persist(start time.Time) error {
	if err := b.advance(stateCategoriesBaked, statePersisted); err != nil {
		return err
	}
	if err := b.manager.SaveRecord(b.rec, start.Unix()); err != nil {
		return fmt.Errorf("failed to persist record: %w", err)
	}
	return nil
}
