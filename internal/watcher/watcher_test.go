package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, time.Second, func() error { return nil }); err == nil {
		t.Error("expected error for empty dir list")
	}
	if _, err := New([]string{"/tmp"}, time.Second, nil); err == nil {
		t.Error("expected error for nil callback")
	}
}

func TestWatcherTriggersAfterBurst(t *testing.T) {
	dir := t.TempDir()

	var runs int32
	w, err := New([]string{dir}, 100*time.Millisecond, func() error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// A burst of writes must coalesce into a single run.
	for i := 0; i < 3; i++ {
		name := filepath.Join(dir, "r-ape-5.7.1-1-x86_64.pkg.tar.zst")
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	deadline := time.After(3 * time.Second)
	for atomic.LoadInt32(&runs) == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher never triggered")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Let the debounce window pass again; with no further events there
	// must be no second run.
	time.Sleep(300 * time.Millisecond)
	if n := atomic.LoadInt32(&runs); n != 1 {
		t.Errorf("expected exactly 1 run, got %d", n)
	}
}

func TestWatcherStopWithoutEvents(t *testing.T) {
	w, err := New([]string{t.TempDir()}, 50*time.Millisecond, func() error { return nil })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "missing")}, time.Second, func() error { return nil })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(); err == nil {
		w.Stop()
		t.Error("expected Start to fail for a missing directory")
	}
}
