// Helper functions for path normalization, sorting, and frontmatter access
package utils

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kettleworks/bake/baker/models"
)

// NormalizePath converts a path to forward slashes for use as a stable key.
func NormalizePath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// SortPosts orders posts newest first.
func SortPosts(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool { return posts[i].Date.After(posts[j].Date) })
}

// SortPathsDescending orders source paths so dated filenames come newest first.
func SortPathsDescending(paths []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
}

func GetString(m map[string]interface{}, k string) string {
	if v, ok := m[k]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func GetSlice(m map[string]interface{}, k string) []string {
	var res []string
	if v, ok := m[k]; ok {
		if l, ok := v.([]interface{}); ok {
			for _, i := range l {
				res = append(res, fmt.Sprintf("%v", i))
			}
		}
	}
	return res
}

func GetBool(m map[string]interface{}, k string) bool {
	if v, ok := m[k]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// MatchAnyPattern reports whether the path matches any of the glob patterns.
// Patterns are matched against both the full slash path and the base name.
func MatchAnyPattern(patterns []string, path string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(slashed)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, slashed); ok {
			return true
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
		if strings.HasPrefix(slashed, strings.TrimSuffix(p, "/*")+"/") {
			return true
		}
	}
	return false
}

// UniqueStrings returns a sorted copy with duplicates removed.
func UniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
