// Package watcher re-runs the artifact cleaner when repository directories
// change. New builds land as files in the repo directories; after a quiet
// period the cleaner is invoked so superseded builds disappear promptly
// instead of waiting for the next scheduled run.
package watcher

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last filesystem
// event before triggering a clean. Package uploads arrive in bursts (artifact
// plus signature, several architectures); one clean per burst is enough.
const DefaultDebounce = 30 * time.Second

// Watcher debounces filesystem events on the repo directories and invokes a
// callback once per burst.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	run      func() error

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher over dirs that calls run after each burst of events.
// A non-positive debounce falls back to DefaultDebounce.
func New(dirs []string, debounce time.Duration, run func() error) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no directories to watch")
	}
	if run == nil {
		return nil, fmt.Errorf("run callback cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dirs:     dirs,
		debounce: debounce,
		run:      run,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start registers the watched directories and begins processing events.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.fsw = fsw
	w.wg.Add(1)
	go w.loop()
	return nil
}

// loop collects events and fires the callback once the burst has settled.
func (w *Watcher) loop() {
	defer w.wg.Done()

	// The timer is armed on the first event and re-armed on each
	// subsequent one; it fires only after a quiet debounce window.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Chmod-only events carry no new content.
			if event.Op == fsnotify.Chmod {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: filesystem watch error: %v", err)

		case <-timer.C:
			if err := w.run(); err != nil {
				log.Printf("watcher: clean run failed: %v", err)
			}

		case <-w.stopCh:
			return
		}
	}
}

// Stop halts the watcher. It does not interrupt a clean already in progress.
func (w *Watcher) Stop() error {
	close(w.stopCh)

	var err error
	if w.fsw != nil {
		err = w.fsw.Close()
	}
	w.wg.Wait()
	return err
}
