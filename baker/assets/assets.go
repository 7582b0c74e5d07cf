// Package assets copies the static tree into the output, minifying what it
// can and skipping files whose copies are already current.
package assets

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
	minsvg "github.com/tdewolff/minify/v2/svg"

	"github.com/kettleworks/bake/baker/utils"
)

// Options controls one asset pass.
type Options struct {
	// SkipPatterns exclude matching source paths entirely.
	SkipPatterns []string
	// ForcePatterns re-copy matching paths even when the copy looks current.
	ForcePatterns []string
	// Minify runs css/js/svg sources through the minifier.
	Minify bool
}

var minifiable = map[string]string{
	".css": "text/css",
	".js":  "text/javascript",
	".svg": "image/svg+xml",
}

// Copy walks staticDir on the source filesystem and mirrors it to the root of
// the destination filesystem. Returns how many files were written.
func Copy(srcFs, destFs afero.Fs, staticDir string, opts Options) (int, error) {
	exists, err := afero.DirExists(srcFs, staticDir)
	if err != nil || !exists {
		return 0, err
	}

	var m *minify.M
	if opts.Minify {
		m = minify.New()
		m.AddFunc("text/css", mincss.Minify)
		m.AddFunc("text/javascript", minjs.Minify)
		m.AddFunc("image/svg+xml", minsvg.Minify)
	}

	copied := 0
	err = afero.Walk(srcFs, staticDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		if utils.MatchAnyPattern(opts.SkipPatterns, rel) {
			return nil
		}

		forced := utils.MatchAnyPattern(opts.ForcePatterns, rel)
		if !forced && upToDate(destFs, rel, info) {
			return nil
		}

		if err := copyOne(srcFs, destFs, path, rel, m); err != nil {
			return fmt.Errorf("failed to copy asset %s: %w", rel, err)
		}
		copied++
		return nil
	})
	return copied, err
}

// upToDate compares the copy's mtime against the source
func upToDate(destFs afero.Fs, rel string, src fs.FileInfo) bool {
	dst, err := destFs.Stat(rel)
	if err != nil {
		return false
	}
	return !dst.ModTime().Before(src.ModTime())
}

func copyOne(srcFs, destFs afero.Fs, path, rel string, m *minify.M) error {
	if err := destFs.MkdirAll(filepath.Dir(rel), 0755); err != nil {
		return err
	}

	in, err := srcFs.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := destFs.Create(rel)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	mime, ok := minifiable[strings.ToLower(filepath.Ext(rel))]
	if m != nil && ok {
		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := m.Minify(mime, &buf, bytes.NewReader(data)); err == nil {
			_, err = out.Write(buf.Bytes())
			return err
		}
		// Minify failure falls back to a plain copy.
		_, err = out.Write(data)
		return err
	}

	_, err = io.Copy(out, in)
	return err
}
