package utils

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/kettleworks/bake/baker/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Go 1.25 Released!", "go-1-25-released"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"Crème Brûlée", "creme-brulee"},
		{"already-a-slug", "already-a-slug"},
		{"___", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath("posts//2026-01-01_a.md"); got != "posts/2026-01-01_a.md" {
		t.Errorf("NormalizePath = %q", got)
	}
}

func TestSortPosts(t *testing.T) {
	posts := []models.Post{
		{Slug: "old", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Slug: "new", Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Slug: "mid", Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	SortPosts(posts)
	got := []string{posts[0].Slug, posts[1].Slug, posts[2].Slug}
	if !reflect.DeepEqual(got, []string{"new", "mid", "old"}) {
		t.Errorf("SortPosts order = %v", got)
	}
}

func TestSortPathsDescending(t *testing.T) {
	paths := []string{
		"posts/2025-01-01_a.md",
		"posts/2026-06-01_b.md",
		"posts/2026-01-01_c.md",
	}
	SortPathsDescending(paths)
	want := []string{
		"posts/2026-06-01_b.md",
		"posts/2026-01-01_c.md",
		"posts/2025-01-01_a.md",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("SortPathsDescending = %v", paths)
	}
}

func TestMatchAnyPattern(t *testing.T) {
	tests := []struct {
		patterns []string
		path     string
		want     bool
	}{
		{[]string{"*.css"}, "styles/main.css", true},
		{[]string{"*.css"}, "styles/main.js", false},
		{[]string{"drafts/*"}, "drafts/nested/file.md", true},
		{[]string{"exact.txt"}, "dir/exact.txt", true},
		{nil, "anything", false},
	}
	for _, tt := range tests {
		if got := MatchAnyPattern(tt.patterns, tt.path); got != tt.want {
			t.Errorf("MatchAnyPattern(%v, %q) = %v, want %v", tt.patterns, tt.path, got, tt.want)
		}
	}
}

func TestGetHelpers(t *testing.T) {
	m := map[string]interface{}{
		"title": "Hello",
		"count": 3,
		"tags":  []interface{}{"a", "b"},
		"draft": true,
	}
	if got := GetString(m, "title"); got != "Hello" {
		t.Errorf("GetString = %q", got)
	}
	if got := GetString(m, "count"); got != "3" {
		t.Errorf("GetString(count) = %q", got)
	}
	if got := GetString(m, "absent"); got != "" {
		t.Errorf("GetString(absent) = %q", got)
	}
	if got := GetSlice(m, "tags"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("GetSlice = %v", got)
	}
	if !GetBool(m, "draft") || GetBool(m, "absent") {
		t.Error("GetBool mismatch")
	}
}

func TestUniqueStrings(t *testing.T) {
	got := UniqueStrings([]string{"b", "a", "b", "c", "a"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("UniqueStrings = %v", got)
	}
}

func TestWorkerPool_CollectsFirstError(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]bool)
	failed := errors.New("task 3 failed")

	pool := NewWorkerPool(context.Background(), 4, func(n int) error {
		if n == 3 {
			return failed
		}
		mu.Lock()
		seen[n] = true
		mu.Unlock()
		return nil
	})
	pool.Start()
	for i := 0; i < 8; i++ {
		pool.Submit(i)
	}

	if err := pool.Stop(); !errors.Is(err, failed) {
		t.Errorf("Stop() = %v, want the handler error", err)
	}
	// The queue drains even after a failure.
	if len(seen) != 7 {
		t.Errorf("processed %d tasks, want 7", len(seen))
	}
}
