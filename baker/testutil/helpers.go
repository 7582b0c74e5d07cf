// Package testutil holds shared helpers for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/kettleworks/bake/baker/record"
)

// CreateTestRecord opens a record manager in a temp directory.
func CreateTestRecord(t *testing.T) (*record.Manager, func()) {
	t.Helper()
	m, err := record.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open record: %v", err)
	}
	return m, func() {
		_ = m.Close()
	}
}

// CreateTestFilesystem returns source and destination in-memory filesystems.
func CreateTestFilesystem() (afero.Fs, afero.Fs) {
	return afero.NewMemMapFs(), afero.NewMemMapFs()
}

// WriteFiles seeds a filesystem with the given path/content pairs.
func WriteFiles(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", path, err)
		}
		if err := afero.WriteFile(fsys, path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
}

// AssertFileExists fails the test when the path is absent.
func AssertFileExists(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		t.Fatalf("Error checking file existence: %v", err)
	}
	if !exists {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test when the path is present.
func AssertFileNotExists(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		t.Fatalf("Error checking file existence: %v", err)
	}
	if exists {
		t.Errorf("Expected file to not exist: %s", path)
	}
}
