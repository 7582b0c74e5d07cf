// Package watch wraps fsnotify with recursive directory registration and
// event debouncing for rebuild-on-change.
package watch

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDuration = 100 * time.Millisecond

// Event is one debounced filesystem change.
type Event struct {
	Name string
	Op   fsnotify.Op
}

// Watcher observes a set of directory trees and reports debounced events.
type Watcher struct {
	watcher *fsnotify.Watcher
	dirs    []string
	onEvent func(Event)
}

// New creates a watcher over the given directories.
func New(dirs []string, onEvent func(Event)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: w, dirs: dirs, onEvent: onEvent}, nil
}

// Start registers the directory trees and blocks dispatching events.
// Directories created while watching are registered on the fly.
func (w *Watcher) Start() {
	defer func() { _ = w.watcher.Close() }()

	for _, dir := range w.dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				// Hidden directories like .git stay unwatched.
				if filepath.Base(path)[0] == '.' && path != "." {
					return filepath.SkipDir
				}
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			log.Printf("Error walking %s: %v", dir, err)
		}
	}

	log.Println("👀 Watch mode active. Waiting for changes...")

	var timer *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDuration, func() {
				w.onEvent(Event{Name: event.Name, Op: event.Op})
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Println("error:", err)
		}
	}
}
