package record

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestManager(t *testing.T) (*Manager, func()) {
	t.Helper()
	m, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open record: %v", err)
	}
	return m, func() {
		_ = m.Close()
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	tmpDir := t.TempDir()
	basePath := filepath.Join(tmpDir, "cache")

	m, err := Open(basePath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer func() { _ = m.Close() }()

	if _, err := os.Stat(filepath.Join(basePath, "record.db")); err != nil {
		t.Error("record database file should be created")
	}
	if _, err := os.Stat(filepath.Join(basePath, "store")); err != nil {
		t.Error("excerpt store directory should be created")
	}
}

func TestOpen_CorruptDatabaseRecreated(t *testing.T) {
	basePath := t.TempDir()
	dbPath := filepath.Join(basePath, "record.db")
	if err := os.WriteFile(dbPath, []byte("not a bolt database"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Open(basePath)
	if err != nil {
		t.Fatalf("Open() with corrupt db failed: %v", err)
	}
	defer func() { _ = m.Close() }()

	rec := m.LoadRecord()
	if rec.Trusted() {
		t.Error("record from recreated database should be untrusted")
	}
}

func TestSignatureRoundtrip(t *testing.T) {
	m, cleanup := createTestManager(t)
	defer cleanup()

	sig := HashString("config-v1")

	valid, err := m.VerifySignature(sig)
	if err != nil {
		t.Fatalf("VerifySignature failed: %v", err)
	}
	if valid {
		t.Error("missing signature should not verify")
	}

	if err := m.SetSignature(sig); err != nil {
		t.Fatalf("SetSignature failed: %v", err)
	}
	if valid, _ = m.VerifySignature(sig); !valid {
		t.Error("stored signature should verify")
	}
	if valid, _ = m.VerifySignature(HashString("config-v2")); valid {
		t.Error("different signature should not verify")
	}
}

func TestSaveLoadRecord(t *testing.T) {
	basePath := t.TempDir()
	m, err := Open(basePath)
	if err != nil {
		t.Fatal(err)
	}

	rec := NewRecord()
	rec.RecordPostInfo("blog", []string{"go"}, "dev", true)
	rec.MarkPageDependsOnPosts("pages/index.md")
	rec.AddTagCombination("blog", "a+b")

	bakeTime := time.Now().Unix()
	if err := m.SaveRecord(rec, bakeTime); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	_ = m.Close()

	m2, err := Open(basePath)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m2.Close() }()

	loaded := m2.LoadRecord()
	if !loaded.Trusted() {
		t.Error("loaded record should be trusted")
	}
	if loaded.LastBakeTime() != bakeTime {
		t.Errorf("LastBakeTime = %d, want %d", loaded.LastBakeTime(), bakeTime)
	}
	if !loaded.PageDependsOnPosts("pages/index.md") {
		t.Error("page dependency should survive a reload")
	}
	if got := loaded.KnownCombinations("blog"); len(got) != 1 {
		t.Errorf("KnownCombinations = %v, want one combination", got)
	}
	// Per-run post infos are not persisted.
	if got := loaded.PostInfos(); len(got) != 0 {
		t.Errorf("PostInfos = %v, want empty", got)
	}
}

func TestLoadRecord_FreshDatabase(t *testing.T) {
	m, cleanup := createTestManager(t)
	defer cleanup()

	rec := m.LoadRecord()
	if rec.Trusted() {
		t.Error("fresh record should be untrusted")
	}
	if rec.LastBakeTime() != 0 {
		t.Errorf("LastBakeTime = %d, want 0", rec.LastBakeTime())
	}
}

func TestResetRecord(t *testing.T) {
	m, cleanup := createTestManager(t)
	defer cleanup()

	rec := NewRecord()
	rec.MarkPageDependsOnPosts("pages/about.md")
	rec.AddTagCombination("blog", "x+y")
	if err := m.SaveRecord(rec, time.Now().Unix()); err != nil {
		t.Fatal(err)
	}

	if err := m.ResetRecord(); err != nil {
		t.Fatalf("ResetRecord failed: %v", err)
	}

	loaded := m.LoadRecord()
	if loaded.Trusted() {
		t.Error("record should be untrusted after reset")
	}
	if loaded.PageDependsOnPosts("pages/about.md") {
		t.Error("page dependencies should be gone after reset")
	}
	if got := loaded.KnownCombinations("blog"); len(got) != 0 {
		t.Errorf("combinations should be gone after reset, got %v", got)
	}
}

func TestPostEntries(t *testing.T) {
	m, cleanup := createTestManager(t)
	defer cleanup()

	entry := &PostEntry{
		Path:    "posts/2026-01-15_hello.md",
		Blog:    "blog",
		ModTime: 12345,
		Title:   "Hello",
		Slug:    "hello",
		Date:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Tags:    []string{"go"},
		URI:     "/blog/hello",
	}
	if err := m.StoreExcerpt(entry, []byte("<p>short excerpt</p>")); err != nil {
		t.Fatalf("StoreExcerpt failed: %v", err)
	}
	if entry.InlineExcerpt == nil {
		t.Error("small excerpt should be stored inline")
	}

	if err := m.PutPostEntries([]*PostEntry{entry}); err != nil {
		t.Fatalf("PutPostEntries failed: %v", err)
	}

	got, err := m.GetPostEntry("posts/2026-01-15_hello.md")
	if err != nil {
		t.Fatalf("GetPostEntry failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.Title != "Hello" || got.ModTime != 12345 {
		t.Errorf("entry mismatch: %+v", got)
	}

	excerpt, err := m.GetExcerpt(got)
	if err != nil {
		t.Fatalf("GetExcerpt failed: %v", err)
	}
	if string(excerpt) != "<p>short excerpt</p>" {
		t.Errorf("excerpt = %q", excerpt)
	}

	if miss, _ := m.GetPostEntry("posts/absent.md"); miss != nil {
		t.Error("expected cache miss for unknown path")
	}
}

func TestStoreExcerpt_LargeGoesToStore(t *testing.T) {
	m, cleanup := createTestManager(t)
	defer cleanup()

	large := make([]byte, InlineExcerptThreshold+1)
	for i := range large {
		large[i] = byte('a' + i%26)
	}

	entry := &PostEntry{Path: "posts/2026-01-01_big.md"}
	if err := m.StoreExcerpt(entry, large); err != nil {
		t.Fatalf("StoreExcerpt failed: %v", err)
	}
	if entry.InlineExcerpt != nil {
		t.Error("large excerpt should not be inlined")
	}
	if entry.ExcerptHash == "" {
		t.Error("large excerpt should carry a store hash")
	}

	got, err := m.GetExcerpt(entry)
	if err != nil {
		t.Fatalf("GetExcerpt failed: %v", err)
	}
	if string(got) != string(large) {
		t.Error("large excerpt roundtrip mismatch")
	}
}
