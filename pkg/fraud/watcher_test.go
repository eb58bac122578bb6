package fraud

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func waitForBlockedCountries(t *testing.T, engine *Engine, want int) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(engine.Rules().BlockedCountries) == want {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestRulesWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte("blocked_countries: [KP]\n"), 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}

	rules, err := LoadRuleset(path)
	if err != nil {
		t.Fatalf("LoadRuleset failed: %v", err)
	}
	engine, err := NewEngine(rules, 100)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	watcher, err := NewRulesWatcher(path, engine, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewRulesWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- watcher.Watch(ctx)
	}()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("blocked_countries: [KP, IR, SY]\n"), 0644); err != nil {
		t.Fatalf("Failed to update rules file: %v", err)
	}

	if !waitForBlockedCountries(t, engine, 3) {
		t.Errorf("Expected reload to pick up 3 blocked countries, got %d",
			len(engine.Rules().BlockedCountries))
	}

	cancel()
	select {
	case err := <-watchDone:
		if err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not stop after context cancellation")
	}
}

func TestRulesWatcher_InvalidFileKeepsPreviousRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte("blocked_countries: [KP]\n"), 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}

	rules, err := LoadRuleset(path)
	if err != nil {
		t.Fatalf("LoadRuleset failed: %v", err)
	}
	engine, err := NewEngine(rules, 100)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	watcher, err := NewRulesWatcher(path, engine, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewRulesWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = watcher.Watch(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("review_threshold: 50\ndecline_threshold: 20\n"), 0644); err != nil {
		t.Fatalf("Failed to update rules file: %v", err)
	}

	// The invalid file must not displace the active ruleset.
	time.Sleep(200 * time.Millisecond)
	if len(engine.Rules().BlockedCountries) != 1 {
		t.Errorf("Expected previous ruleset to survive invalid reload, got %v",
			engine.Rules().BlockedCountries)
	}
}

func TestRulesWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte("blocked_countries: [KP]\n"), 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}

	engine, err := NewEngine(DefaultRuleset(), 100)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	watcher, err := NewRulesWatcher(path, engine, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewRulesWatcher failed: %v", err)
	}

	other := fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}
	if watcher.shouldProcessEvent(other) {
		t.Error("Expected events for other files to be ignored")
	}

	rules := fsnotify.Event{Name: path, Op: fsnotify.Write}
	if !watcher.shouldProcessEvent(rules) {
		t.Error("Expected events for the rules file to be processed")
	}

	chmod := fsnotify.Event{Name: path, Op: fsnotify.Chmod}
	if watcher.shouldProcessEvent(chmod) {
		t.Error("Expected chmod events to be ignored")
	}

	_ = watcher.watcher.Close()
}

func TestDebouncer_CollapsesRapidTriggers(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.stop()

	fired := make(chan struct{}, 10)
	for i := 0; i < 5; i++ {
		d.trigger(func() { fired <- struct{}{} })
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Expected debounced callback to fire")
	}

	select {
	case <-fired:
		t.Error("Expected rapid triggers to collapse to one callback")
	case <-time.After(100 * time.Millisecond):
	}
}
