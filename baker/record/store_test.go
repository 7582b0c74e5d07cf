package record

import (
	"bytes"
	"testing"
)

func createTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s, func() {
		_ = s.Close()
	}
}

func TestDetermineCompression(t *testing.T) {
	tests := []struct {
		size int
		want CompressionType
	}{
		{0, CompressionNone},
		{RawThreshold - 1, CompressionNone},
		{RawThreshold, CompressionZstdFast},
		{FastZstdMax - 1, CompressionZstdFast},
		{FastZstdMax, CompressionZstdLevel3},
	}
	for _, tt := range tests {
		if got := determineCompression(tt.size); got != tt.want {
			t.Errorf("determineCompression(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestStore_PutGetRaw(t *testing.T) {
	s, cleanup := createTestStore(t)
	defer cleanup()

	content := []byte("small blob")
	hash, ct, err := s.Put(content)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ct != CompressionNone {
		t.Errorf("compression = %v, want none", ct)
	}
	if !s.Exists(hash) {
		t.Error("blob should exist after Put")
	}

	got, err := s.Get(hash, false)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Get = %q, want %q", got, content)
	}
}

func TestStore_PutGetCompressed(t *testing.T) {
	s, cleanup := createTestStore(t)
	defer cleanup()

	content := bytes.Repeat([]byte("compressible content "), 1024)
	hash, ct, err := s.Put(content)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ct == CompressionNone {
		t.Error("large blob should be compressed")
	}

	got, err := s.Get(hash, true)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("compressed roundtrip mismatch")
	}
}

func TestStore_PutIdempotent(t *testing.T) {
	s, cleanup := createTestStore(t)
	defer cleanup()

	content := []byte("same content")
	h1, _, err := s.Put(content)
	if err != nil {
		t.Fatal(err)
	}
	h2, _, err := s.Put(content)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("same content hashed differently: %s vs %s", h1, h2)
	}
}

func TestStore_GetFallbackExtension(t *testing.T) {
	s, cleanup := createTestStore(t)
	defer cleanup()

	// Stored raw, requested as compressed: the lookup falls back.
	hash, _, err := s.Put([]byte("raw blob"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(hash, true)
	if err != nil {
		t.Fatalf("fallback Get failed: %v", err)
	}
	if string(got) != "raw blob" {
		t.Errorf("Get = %q", got)
	}
}

func TestStore_Purge(t *testing.T) {
	s, cleanup := createTestStore(t)
	defer cleanup()

	hash, _, err := s.Put([]byte("doomed"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Purge(); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if s.Exists(hash) {
		t.Error("blob should be gone after Purge")
	}
}

func TestStore_GetMissing(t *testing.T) {
	s, cleanup := createTestStore(t)
	defer cleanup()

	if _, err := s.Get(HashString("never stored"), false); err == nil {
		t.Error("expected error for missing blob")
	}
}
