package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDirWatcherDetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standard.yaml")
	if err := os.WriteFile(path, []byte("name: A\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int32
	w := NewDirWatcher(dir, 20*time.Millisecond, func(string) {
		fired.Add(1)
	})
	w.Start()
	defer w.Stop()

	// let the watcher prime its mtime cache
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatal("priming scan must not fire")
	}

	// bump mtime well past the primed value
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if fired.Load() == 0 {
		t.Fatal("change not detected")
	}
}

func TestDirWatcherDetectsNewFile(t *testing.T) {
	dir := t.TempDir()

	var fired atomic.Int32
	w := NewDirWatcher(dir, 20*time.Millisecond, func(string) {
		fired.Add(1)
	})
	w.Start()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "event.yaml"), []byte("name: B\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if fired.Load() == 0 {
		t.Fatal("new file not detected")
	}
}
