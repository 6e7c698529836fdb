package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirWatcher polls a directory's YAML files by modification time and
// triggers a callback on change.
type DirWatcher struct {
	Dir       string
	Interval  time.Duration
	onChange  func(string) // called with the path that changed
	stopCh    chan struct{}
	lastMTime map[string]time.Time
}

// NewDirWatcher creates a watcher over dir with the given poll interval.
func NewDirWatcher(dir string, interval time.Duration, onChange func(string)) *DirWatcher {
	return &DirWatcher{
		Dir:       dir,
		Interval:  interval,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start begins polling in a goroutine.
func (w *DirWatcher) Start() {
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		// prime cache
		w.scan(true)
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher.
func (w *DirWatcher) Stop() {
	close(w.stopCh)
}

// scan checks mtimes of every yaml file under Dir, including new files,
// and invokes onChange for anything that changed since the last scan.
func (w *DirWatcher) scan(prime bool) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(w.Dir, e.Name())
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[path]
		if !ok {
			w.lastMTime[path] = mt
			if !prime && w.onChange != nil {
				// a brand-new banner file counts as a change
				w.onChange(path)
			}
			continue
		}
		if mt.After(last) {
			w.lastMTime[path] = mt
			if !prime && w.onChange != nil {
				w.onChange(path)
			}
		}
	}
}
