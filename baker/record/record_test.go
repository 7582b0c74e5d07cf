package record

import (
	"reflect"
	"testing"
)

func TestRecord_TagsToBake(t *testing.T) {
	rec := NewRecord()
	rec.RecordPostInfo("blog", []string{"go", "testing"}, "dev", true)
	rec.RecordPostInfo("blog", []string{"go", "news"}, "dev", false)
	rec.RecordPostInfo("other", []string{"misc"}, "", true)

	tags := rec.TagsToBake("blog")
	want := map[string]bool{"go": true, "testing": true}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("TagsToBake = %v, want %v", tags, want)
	}
}

func TestRecord_CategoriesToBake(t *testing.T) {
	rec := NewRecord()
	rec.RecordPostInfo("blog", nil, "dev", true)
	rec.RecordPostInfo("blog", nil, "dev", true)
	rec.RecordPostInfo("blog", nil, "life", true)
	rec.RecordPostInfo("blog", nil, "skipped", false)
	rec.RecordPostInfo("blog", nil, "", true)

	got := rec.CategoriesToBake("blog")
	want := []string{"dev", "life"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CategoriesToBake = %v, want %v", got, want)
	}
}

func TestRecord_PostsTagged_CompositeKey(t *testing.T) {
	rec := NewRecord()
	rec.RecordPostInfo("blog", []string{"a", "b"}, "", true)
	rec.RecordPostInfo("blog", []string{"a"}, "", true)
	rec.RecordPostInfo("blog", []string{"b"}, "", false)

	if got := len(rec.PostsTagged("blog", "a")); got != 2 {
		t.Errorf("PostsTagged(a) = %d entries, want 2", got)
	}
	// A composite key matches only posts carrying every member tag.
	if got := len(rec.PostsTagged("blog", "a+b")); got != 1 {
		t.Errorf("PostsTagged(a+b) = %d entries, want 1", got)
	}
	if got := len(rec.PostsTagged("blog", "a+c")); got != 0 {
		t.Errorf("PostsTagged(a+c) = %d entries, want 0", got)
	}
}

func TestRecord_AnyPostWasBaked(t *testing.T) {
	rec := NewRecord()
	if rec.AnyPostWasBaked() {
		t.Error("empty record should report no baked posts")
	}
	rec.RecordPostInfo("blog", nil, "", false)
	if rec.AnyPostWasBaked() {
		t.Error("unbaked entries should not count")
	}
	rec.RecordPostInfo("blog", nil, "", true)
	if !rec.AnyPostWasBaked() {
		t.Error("expected baked post to be reported")
	}
}

func TestRecord_PageDependencies(t *testing.T) {
	rec := NewRecord()
	if rec.PageDependsOnPosts("pages/index.md") {
		t.Error("unmarked page should not depend on posts")
	}
	rec.MarkPageDependsOnPosts("pages/index.md")
	rec.MarkPageDependsOnPosts("pages/index.md")
	if !rec.PageDependsOnPosts("pages/index.md") {
		t.Error("marked page should depend on posts")
	}
	if got := rec.PageDependencyIDs(); len(got) != 1 {
		t.Errorf("PageDependencyIDs = %v, want one entry", got)
	}
}

func TestRecord_KnownCombinations(t *testing.T) {
	rec := NewRecord()
	rec.AddTagCombination("blog", "b+c")
	rec.AddTagCombination("blog", "a+b")
	rec.AddTagCombination("blog", "a+b")

	got := rec.KnownCombinations("blog")
	want := [][]string{{"a", "b"}, {"b", "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KnownCombinations = %v, want %v", got, want)
	}
}

type fakeCollector struct {
	combos map[string][][]string
}

func (f *fakeCollector) TagCombinations() map[string][][]string { return f.combos }

func TestRecord_CollectTagCombinations(t *testing.T) {
	rec := NewRecord()
	rec.CollectTagCombinations(&fakeCollector{combos: map[string][][]string{
		"blog": {{"a", "b"}, {"solo"}},
	}})

	got := rec.KnownCombinations("blog")
	// Single-tag observations are not combinations.
	want := [][]string{{"a", "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KnownCombinations = %v, want %v", got, want)
	}

	// Nil collector is a no-op.
	rec.CollectTagCombinations(nil)
}
