package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RulesWatcher watches the rules file for changes and hot-reloads the engine's
// ruleset. It debounces rapid events so editors that write in several steps do
// not trigger a reload storm.
type RulesWatcher struct {
	path     string
	engine   *Engine
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRulesWatcher creates a watcher for the given rules file. debounceInterval
// defaults to 100ms when zero.
func NewRulesWatcher(path string, engine *Engine, debounceInterval time.Duration) (*RulesWatcher, error) {
	if debounceInterval <= 0 {
		debounceInterval = 100 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &RulesWatcher{
		path:     path,
		engine:   engine,
		watcher:  watcher,
		logger:   slog.Default().With("component", "fraud"),
		debounce: newDebouncer(debounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, reloading the ruleset on file changes, until the context is
// cancelled or Stop is called. A reload that fails to parse or validate keeps
// the previous ruleset active.
func (rw *RulesWatcher) Watch(ctx context.Context) error {
	rw.mu.Lock()
	if rw.running {
		rw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	rw.running = true
	rw.mu.Unlock()

	defer func() {
		rw.mu.Lock()
		rw.running = false
		rw.mu.Unlock()
		close(rw.doneCh)
	}()

	// Watch the parent directory so rename-based saves (the common editor
	// and atomic-write pattern) are still observed.
	if err := rw.watcher.Add(filepath.Dir(rw.path)); err != nil {
		return fmt.Errorf("failed to watch rules directory: %w", err)
	}

	rw.logger.Info("rules watcher started", "path", rw.path)

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("rules watcher stopped (context cancelled)")
			return nil

		case <-rw.stopCh:
			rw.logger.Info("rules watcher stopped")
			return nil

		case event, ok := <-rw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !rw.shouldProcessEvent(event) {
				continue
			}

			rw.logger.Debug("rules file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			rw.debounce.trigger(func() {
				rw.reload()
			})

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}

			rw.logger.Error("rules watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for the watch loop to exit.
func (rw *RulesWatcher) Stop() error {
	rw.mu.Lock()
	if !rw.running {
		rw.mu.Unlock()
		return nil
	}
	rw.mu.Unlock()

	close(rw.stopCh)
	<-rw.doneCh

	rw.debounce.stop()

	if err := rw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	return nil
}

func (rw *RulesWatcher) reload() {
	rules, err := LoadRuleset(rw.path)
	if err != nil {
		rw.logger.Error("rules reload failed, keeping previous ruleset", "error", err)
		return
	}
	rw.engine.SetRules(rules)
}

func (rw *RulesWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Base(event.Name) == filepath.Base(rw.path)
}

// debouncer collects rapid events and runs the callback only after a quiet
// period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()

			if cb != nil {
				cb()
			}
		}
	})
}

func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
