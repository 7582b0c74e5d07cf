// Package clean removes the baked output and, optionally, the record cache.
// Directories are renamed aside first so deletion happens in the background.
package clean

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kettleworks/bake/baker/config"
)

// Run clears the output directory. withCache also drops the record cache,
// which forces a full bake next run.
func Run(withCache bool) error {
	start := time.Now()

	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	removeAsync(absolute(cwd, cfg.OutputDir))
	if withCache {
		removeAsync(absolute(cwd, cfg.CacheDir))
	}

	fmt.Printf("🧹 Clean started in %v, deletion continues in background\n", time.Since(start))
	return nil
}

func absolute(cwd, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(cwd, dir)
}

// removeAsync renames the directory aside and deletes it in the background,
// so a rebuild can start immediately. Falls back to a synchronous delete when
// the rename fails.
func removeAsync(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}

	tempPath := fmt.Sprintf("%s_deleting_%d", path, time.Now().UnixNano())
	if err := os.Rename(path, tempPath); err != nil {
		if err := os.RemoveAll(path); err != nil {
			fmt.Printf("⚠️ Failed to remove %s: %v\n", path, err)
		}
		return
	}

	go func() {
		_ = os.RemoveAll(tempPath)
	}()
}
