package format

import (
	"strings"
	"sync"

	"github.com/kettleworks/bake/baker/combine"
)

// LinkCollector accumulates composite-tag link usages observed during a run.
// A page linking to /blog/tag/a+b declares that the a+b combination exists,
// even if no configuration mentions it.
type LinkCollector struct {
	mu     sync.Mutex
	combos map[string]map[string]bool // blogKey -> rendered keys
}

func NewLinkCollector() *LinkCollector {
	return &LinkCollector{combos: make(map[string]map[string]bool)}
}

// Observe inspects one internal link destination for a tag-listing URI with
// a composite key. Anything else is ignored.
func (c *LinkCollector) Observe(blog, uri string) {
	key, ok := compositeTagKey(uri)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.combos[blog] == nil {
		c.combos[blog] = make(map[string]bool)
	}
	c.combos[blog][key] = true
}

// TagCombinations returns the observed combinations per blog as tag lists.
func (c *LinkCollector) TagCombinations() map[string][][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][][]string, len(c.combos))
	for blog, keys := range c.combos {
		for key := range keys {
			out[blog] = append(out[blog], combine.Split(key))
		}
	}
	return out
}

// compositeTagKey extracts a multi-tag key from a tag-listing URI like
// "/blog/tag/a+b" or "tag/a+b/2". Single-tag URIs return ok=false.
func compositeTagKey(uri string) (string, bool) {
	uri = strings.Trim(uri, "/")
	parts := strings.Split(uri, "/")
	for i, p := range parts {
		if p != "tag" || i+1 >= len(parts) {
			continue
		}
		key := parts[i+1]
		if strings.Contains(key, combine.Separator) {
			return key, true
		}
	}
	return "", false
}
