// Package reload drives browser reloads for the debug server: a recursive
// fsnotify watcher over the template and static directories and a websocket
// hub that tells connected pages to reload when something changes.
package reload

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 50 * time.Millisecond

// Directories to ignore when watching.
var ignoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".idea":        true,
	".vscode":      true,
}

// Editor artifacts that never warrant a reload.
var ignoreSuffixes = []string{".swp", ".swx", ".tmp", "~", ".DS_Store"}

// Watcher watches directory trees and reports changed files.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring every directory in dirs recursively.
// onChange is called with the absolute path of each changed file.
// Missing directories are skipped.
func (w *Watcher) Watch(dirs []string, onChange func(filePath string)) error {
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			return err
		}
	}

	debounce := newDebouncer(debounceInterval)

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name

				// new subdirectories join the watch list
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						if !ignoreDirs[info.Name()] {
							w.fw.Add(path)
						}
						continue
					}
				}

				if shouldIgnorePath(path) {
					continue
				}

				// Chmod alone never reloads and must not use up the window
				if !isReloadOp(event.Op) {
					continue
				}
				if debounce.allow(path, time.Now()) {
					onChange(path)
				}

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				log.Printf("[RELOAD]: watcher error: %v", err)

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

func (w *Watcher) addTree(dir string) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		log.Printf("[RELOAD]: not watching %s: %v", absPath, err)
		return nil
	}
	return filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			if ignoreDirs[info.Name()] && path != absPath {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
}

// isReloadOp reports whether op changes file content or presence
func isReloadOp(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}

// debouncer drops repeat events for a path inside the interval.
// Editors often write a file several times per save.
type debouncer struct {
	interval time.Duration
	last     map[string]time.Time
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval, last: make(map[string]time.Time)}
}

// allow records path at now and reports whether it is outside the window.
// Expired entries are evicted so the map only holds recent paths.
func (d *debouncer) allow(path string, now time.Time) bool {
	for p, t := range d.last {
		if now.Sub(t) >= d.interval {
			delete(d.last, p)
		}
	}
	if _, recent := d.last[path]; recent {
		return false
	}
	d.last[path] = now
	return true
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// shouldIgnorePath returns true if the file path should not trigger onChange.
func shouldIgnorePath(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range ignoreSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	// vim swap probe file
	if base == "4913" {
		return true
	}
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}
	return false
}
