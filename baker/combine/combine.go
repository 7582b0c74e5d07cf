// Package combine expands the set of changed tags into the ordered list of
// (possibly composite) tag keys whose listing pages must be rebuilt.
package combine

import (
	"sort"
	"strings"
)

// Separator joins the member tags of a composite key in rendered form.
const Separator = "+"

// ConfigSeparator is how pre-declared combinations are written in run
// configuration ("science/tech").
const ConfigSeparator = "/"

// ParseConfigured splits config-form combination strings into tag lists.
// Entries with fewer than two tags are dropped.
func ParseConfigured(entries []string) [][]string {
	var out [][]string
	for _, e := range entries {
		parts := strings.Split(e, ConfigSeparator)
		var tags []string
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				tags = append(tags, p)
			}
		}
		if len(tags) >= 2 {
			out = append(out, tags)
		}
	}
	return out
}

// Render joins a combination's member tags into its composite key.
func Render(tags []string) string {
	return strings.Join(tags, Separator)
}

// Split recovers the member tags of a rendered key. Single tags come back as
// a one-element slice.
func Split(key string) []string {
	return strings.Split(key, Separator)
}

// Expand computes the final ordered set of tag keys to rebuild. Configured
// and known combinations are unioned and kept only if at least one of their
// member tags changed this run; the surviving composite keys are concatenated
// with the single changed tags and the whole list is sorted lexicographically
// on rendered form. No changed tags means nothing to rebuild, regardless of
// configuration.
func Expand(changedTags map[string]bool, configured, known [][]string) []string {
	if len(changedTags) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var keys []string

	for _, combo := range append(append([][]string{}, configured...), known...) {
		key := Render(combo)
		if seen[key] {
			continue
		}
		seen[key] = true
		if intersects(combo, changedTags) {
			keys = append(keys, key)
		}
	}

	for tag := range changedTags {
		if !seen[tag] {
			seen[tag] = true
			keys = append(keys, tag)
		}
	}

	sort.Strings(keys)
	return keys
}

func intersects(tags []string, changed map[string]bool) bool {
	for _, t := range tags {
		if changed[t] {
			return true
		}
	}
	return false
}
