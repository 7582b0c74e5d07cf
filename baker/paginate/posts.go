package paginate

import (
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Dated post filenames have the fixed shape YYYY-MM-DD_slug.ext.
var postNameRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})_(.+?)(\.[^.]+)?$`)

// ExcerptMarkers are the standalone lines that split a post's listing excerpt
// from the rest of its content.
var ExcerptMarkers = []string{"<!--more-->", "<!--break-->"}

// ParsePostFilename recovers the date and slug from a dated filename.
// ok is false for names that do not match; callers skip those, they are
// never an error.
func ParsePostFilename(name string) (date time.Time, slug string, ok bool) {
	m := postNameRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", false
	}
	date, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, "", false
	}
	return date, m[4], true
}

// ScanPostFiles walks a blog's source directory and returns the paths of all
// files whose names parse as dated posts. Non-matching files are skipped.
func ScanPostFiles(fsys afero.Fs, dir string) ([]string, error) {
	var paths []string
	err := afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		base := info.Name()
		if _, _, ok := ParsePostFilename(base); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// SplitExcerpt splits rendered content on the first standalone more/break
// marker line. Only the portion before the marker is the listing excerpt.
func SplitExcerpt(content string) (excerpt string, hasMore bool) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, marker := range ExcerptMarkers {
			if trimmed == marker {
				return strings.Join(lines[:i], "\n"), true
			}
		}
	}
	return content, false
}
