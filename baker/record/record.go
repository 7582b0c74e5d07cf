package record

import (
	"sort"
	"sync"

	"github.com/kettleworks/bake/baker/combine"
	"github.com/kettleworks/bake/baker/models"
)

// LinkCollector exposes the composite-tag link usages observed by the
// rendering layer while baking ordinary pages. A page that links to a
// multi-tag URI implicitly declares that the combination exists.
type LinkCollector interface {
	TagCombinations() map[string][][]string // blogKey -> observed combinations
}

// Record is the in-memory bake record for one run. PostInfos reflect this
// run only; page dependencies and known tag combinations accumulate across
// runs (loaded from persisted state, updated, re-persisted).
type Record struct {
	mu sync.Mutex

	lastBakeTime int64
	trusted      bool

	postInfos []models.PostInfo
	pageDeps  map[string]bool
	tagCombos map[string]map[string]bool // blogKey -> rendered composite keys
}

// NewRecord returns an empty, untrusted record (first run).
func NewRecord() *Record {
	return &Record{
		pageDeps:  make(map[string]bool),
		tagCombos: make(map[string]map[string]bool),
	}
}

// LastBakeTime is the timestamp of the previous successful run; zero means
// no prior run.
func (r *Record) LastBakeTime() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastBakeTime
}

func (r *Record) SetLastBakeTime(t int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastBakeTime = t
}

// Trusted reports whether the record was successfully loaded from a prior
// run and can drive incremental decisions.
func (r *Record) Trusted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trusted
}

// RecordPostInfo appends one entry per processed post; no deduplication.
func (r *Record) RecordPostInfo(blog string, tags []string, category string, wasBaked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postInfos = append(r.postInfos, models.PostInfo{
		Blog:     blog,
		Tags:     tags,
		Category: category,
		WasBaked: wasBaked,
	})
}

// PostInfos returns a copy of this run's entries.
func (r *Record) PostInfos() []models.PostInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PostInfo, len(r.postInfos))
	copy(out, r.postInfos)
	return out
}

// MarkPageDependsOnPosts is an idempotent set-insert.
func (r *Record) MarkPageDependsOnPosts(pageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pageDeps[pageID] = true
}

func (r *Record) PageDependsOnPosts(pageID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pageDeps[pageID]
}

// AnyPostWasBaked gates whether ordinary pages need re-checking for
// post-dependency at all; when no post changed the check is skipped entirely.
func (r *Record) AnyPostWasBaked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pi := range r.postInfos {
		if pi.WasBaked {
			return true
		}
	}
	return false
}

// TagsToBake returns the union of tags across this run's baked posts of the
// given blog.
func (r *Record) TagsToBake(blog string) map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	tags := make(map[string]bool)
	for _, pi := range r.postInfos {
		if pi.Blog != blog || !pi.WasBaked {
			continue
		}
		for _, t := range pi.Tags {
			tags[t] = true
		}
	}
	return tags
}

// CategoriesToBake returns the sorted categories of this run's baked posts.
func (r *Record) CategoriesToBake(blog string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var cats []string
	for _, pi := range r.postInfos {
		if pi.Blog != blog || !pi.WasBaked || pi.Category == "" {
			continue
		}
		if !seen[pi.Category] {
			seen[pi.Category] = true
			cats = append(cats, pi.Category)
		}
	}
	sort.Strings(cats)
	return cats
}

// PostsTagged filters this run's entries for posts carrying the given tag
// key. A composite key matches only posts that carry all its member tags.
func (r *Record) PostsTagged(blog, tagOrCombination string) []models.PostInfo {
	members := combine.Split(tagOrCombination)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PostInfo
	for _, pi := range r.postInfos {
		if pi.Blog != blog {
			continue
		}
		matches := true
		for _, m := range members {
			if !pi.HasTag(m) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, pi)
		}
	}
	return out
}

// PostsInCategory filters this run's entries by category.
func (r *Record) PostsInCategory(blog, category string) []models.PostInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PostInfo
	for _, pi := range r.postInfos {
		if pi.Blog == blog && pi.Category == category {
			out = append(out, pi)
		}
	}
	return out
}

// AddTagCombination merges one rendered composite key into the known set.
// Combinations are permanent once discovered: the listing page that
// references one may never be re-triggered by a tag-content change alone.
func (r *Record) AddTagCombination(blog, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addCombinationLocked(blog, key)
}

func (r *Record) addCombinationLocked(blog, key string) {
	if r.tagCombos[blog] == nil {
		r.tagCombos[blog] = make(map[string]bool)
	}
	r.tagCombos[blog][key] = true
}

// CollectTagCombinations pulls composite-tag usages observed by the
// rendering layer and merges them into the known set.
func (r *Record) CollectTagCombinations(lc LinkCollector) {
	if lc == nil {
		return
	}
	observed := lc.TagCombinations()
	r.mu.Lock()
	defer r.mu.Unlock()
	for blog, combos := range observed {
		for _, combo := range combos {
			if len(combo) >= 2 {
				r.addCombinationLocked(blog, combine.Render(combo))
			}
		}
	}
}

// KnownCombinations returns the accumulated combinations for a blog as tag
// lists, sorted by rendered key.
func (r *Record) KnownCombinations(blog string) [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.tagCombos[blog]))
	for k := range r.tagCombos[blog] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, combine.Split(k))
	}
	return out
}

// PageDependencyIDs returns the accumulated dependent-page set, sorted.
func (r *Record) PageDependencyIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.pageDeps))
	for id := range r.pageDeps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
