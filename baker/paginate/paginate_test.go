package paginate

import (
	"fmt"
	"testing"
	"time"

	"github.com/kettleworks/bake/baker/models"
)

func makePosts(n int) []models.Post {
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{
			Slug: fmt.Sprintf("post-%d", i),
			Date: time.Date(2026, 1, n-i, 0, 0, 0, 0, time.UTC),
		}
	}
	return posts
}

func TestWindowOf_Exactness(t *testing.T) {
	// 10 posts at 4 per page yield windows of 4, 4, 2.
	posts := makePosts(10)

	sizes := []int{4, 4, 2}
	for i, want := range sizes {
		w, err := WindowOf(posts, i+1, 4, "/blog")
		if err != nil {
			t.Fatalf("WindowOf(page %d) failed: %v", i+1, err)
		}
		if len(w.Posts) != want {
			t.Errorf("page %d: got %d posts, want %d", i+1, len(w.Posts), want)
		}
		if w.TotalPages != 3 {
			t.Errorf("page %d: TotalPages = %d, want 3", i+1, w.TotalPages)
		}
	}

	// Windows are contiguous and non-overlapping.
	w2, _ := WindowOf(posts, 2, 4, "/blog")
	if w2.Posts[0].Slug != "post-4" {
		t.Errorf("page 2 starts at %s, want post-4", w2.Posts[0].Slug)
	}
}

func TestWindowOf_NavigationURIs(t *testing.T) {
	posts := makePosts(10)

	tests := []struct {
		page    int
		prev    string
		next    string
		hasPrev bool
		hasNext bool
	}{
		{page: 1, prev: "", next: "/blog/2", hasPrev: false, hasNext: true},
		{page: 2, prev: "/blog", next: "/blog/3", hasPrev: true, hasNext: true},
		{page: 3, prev: "/blog/2", next: "", hasPrev: true, hasNext: false},
	}

	for _, tt := range tests {
		w, err := WindowOf(posts, tt.page, 4, "/blog")
		if err != nil {
			t.Fatalf("WindowOf(page %d) failed: %v", tt.page, err)
		}
		if w.HasPrevious != tt.hasPrev || w.HasNext != tt.hasNext {
			t.Errorf("page %d: HasPrevious=%v HasNext=%v, want %v %v",
				tt.page, w.HasPrevious, w.HasNext, tt.hasPrev, tt.hasNext)
		}
		if w.PreviousURI != tt.prev {
			t.Errorf("page %d: PreviousURI = %q, want %q", tt.page, w.PreviousURI, tt.prev)
		}
		if w.NextURI != tt.next {
			t.Errorf("page %d: NextURI = %q, want %q", tt.page, w.NextURI, tt.next)
		}
	}
}

func TestWindowOf_BeyondEnd(t *testing.T) {
	posts := makePosts(3)
	w, err := WindowOf(posts, 5, 4, "/blog")
	if err != nil {
		t.Fatalf("WindowOf beyond end failed: %v", err)
	}
	if len(w.Posts) != 0 {
		t.Errorf("expected empty window past the end, got %d posts", len(w.Posts))
	}
}

func TestWindowOf_InvalidArguments(t *testing.T) {
	posts := makePosts(3)
	if _, err := WindowOf(posts, 0, 4, "/blog"); err == nil {
		t.Error("expected error for page number 0")
	}
	if _, err := WindowOf(posts, 1, 0, "/blog"); err == nil {
		t.Error("expected error for zero per-page")
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, per, want int
	}{
		{0, 4, 1},
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{10, 4, 3},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.per); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.per, got, tt.want)
		}
	}
}
