// ABOUTME: fsnotify-based watcher for catalog/replies override hot reload
// ABOUTME: Watches parent directories so editor rename-and-replace saves are seen; bursts are debounced

package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mauromedda/portfolio-bot/internal/log"
)

// Watcher calls onChange after any monitored file is written, created,
// renamed or removed. Events arriving within the debounce window collapse
// into one call.
type Watcher struct {
	files    map[string]bool // cleaned absolute paths
	onChange func()
	debounce time.Duration
	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher that calls onChange when any monitored file changes.
func NewWatcher(paths []string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(paths)),
		onChange: onChange,
		debounce: 200 * time.Millisecond,
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// SetDebounce overrides the default debounce window (200ms). Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Start begins watching in a goroutine. Safe to call multiple times; subsequent calls are no-ops.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	go w.loop(w.debounce)
}

// Stop halts the watcher and waits for the loop to exit. Safe to call
// multiple times and concurrently.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		started := w.running
		w.running = false
		w.mu.Unlock()

		close(w.stopCh)
		_ = w.fsw.Close()
		if started {
			<-w.done
		}
	})
}

func (w *Watcher) loop(debounce time.Duration) {
	defer close(w.done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(ev.Name)] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			log.Debug("config watcher: %s %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher: %v", err)
		case <-fire:
			fire = nil
			w.onChange()
		}
	}
}
