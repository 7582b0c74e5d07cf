package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if cfg.PostsPerPage != 10 {
		t.Errorf("PostsPerPage = %d, want default 10", cfg.PostsPerPage)
	}
	if cfg.OutputDir != "public" {
		t.Errorf("OutputDir = %q, want public", cfg.OutputDir)
	}
	if len(cfg.Blogs) != 1 || cfg.Blogs[0].Key != "blog" {
		t.Errorf("Blogs = %+v, want single default blog", cfg.Blogs)
	}
}

func TestLoad_MalformedIsError(t *testing.T) {
	path := writeConfig(t, "title: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoad_TrimsBaseURL(t *testing.T) {
	path := writeConfig(t, `baseURL: "https://example.com/"`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "https://example.com" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
}

func TestLoad_ClampsPostsPerPage(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"0", 1},
		{"-5", 1},
		{"500", 100},
		{"25", 25},
	}
	for _, tt := range tests {
		path := writeConfig(t, "postsPerPage: "+tt.value)
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.PostsPerPage != tt.want {
			t.Errorf("postsPerPage %s: got %d, want %d", tt.value, cfg.PostsPerPage, tt.want)
		}
	}
}

func TestApplyVariant(t *testing.T) {
	path := writeConfig(t, `
title: "Dev Site"
baseURL: "http://localhost:2604"
variants:
  production:
    baseURL: "https://example.com"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.ApplyVariant("production"); err != nil {
		t.Fatalf("ApplyVariant failed: %v", err)
	}
	if cfg.BaseURL != "https://example.com" {
		t.Errorf("BaseURL = %q, want overlay applied", cfg.BaseURL)
	}
	// Untouched fields survive the overlay.
	if cfg.Title != "Dev Site" {
		t.Errorf("Title = %q, want unchanged", cfg.Title)
	}
}

func TestApplyVariant_MissingIsError(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyVariant("nope"); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestApplyVariant_EmptyIsNoop(t *testing.T) {
	cfg := Default()
	before := cfg.BaseURL
	if err := cfg.ApplyVariant(""); err != nil {
		t.Fatalf("empty variant should be a no-op: %v", err)
	}
	if cfg.BaseURL != before {
		t.Error("empty variant changed the configuration")
	}
}

func TestCanonicalBytes_ExcludesVariants(t *testing.T) {
	a := Default()
	b := Default()
	b.Variants = map[string]map[string]interface{}{
		"production": {"baseURL": "https://example.com"},
	}

	if !bytes.Equal(a.CanonicalBytes(), b.CanonicalBytes()) {
		t.Error("variants should not affect the canonical form")
	}

	b.Title = "Changed"
	if bytes.Equal(a.CanonicalBytes(), b.CanonicalBytes()) {
		t.Error("effective changes must alter the canonical form")
	}
}
