// ABOUTME: Tests for the fsnotify-backed template watcher.
// ABOUTME: Covers reload after a write, coalescing of bursts, and clean shutdown on cancel.
package site

import (
	"bytes"
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type countingReloader struct {
	loads atomic.Int32
}

func (c *countingReloader) Load() error {
	c.loads.Add(1)
	return nil
}

func startWatcher(t *testing.T, target Reloader, dirs ...string) (*Watcher, chan error) {
	t.Helper()
	w, err := NewWatcher(target, dirs...)
	if err != nil {
		t.Fatalf("unexpected error creating watcher: %v", err)
	}
	reloaded := make(chan error, 16)
	w.OnReload = func(err error) { reloaded <- err }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return w, reloaded
}

func TestWatcherReloadsTemplates(t *testing.T) {
	dir := writeTestAssets(t, `{{define "content"}}before{{end}}`)
	engine, err := NewTemplateEngine(filepath.Join(dir, "templates"), "")
	if err != nil {
		t.Fatalf("failed to create template engine: %v", err)
	}
	_, reloaded := startWatcher(t, engine, filepath.Join(dir, "templates"))

	writeFile(t, filepath.Join(dir, "templates", "index.html"), `{{define "content"}}after{{end}}`)

	select {
	case err := <-reloaded:
		if err != nil {
			t.Fatalf("unexpected reload error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	var buf bytes.Buffer
	if err := engine.RenderTo(&buf, "index.html", PageData{}.Vars()); err != nil {
		t.Fatalf("failed to render: %v", err)
	}
	if got := buf.String(); got != "<html>after</html>" {
		t.Errorf("expected reloaded template, got %q", got)
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	target := &countingReloader{}
	_, reloaded := startWatcher(t, target, dir)

	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(dir, "burst.html"), "x")
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	// Give any stray second reload a chance to show up.
	time.Sleep(3 * reloadDelay)
	if n := target.loads.Load(); n != 1 {
		t.Errorf("expected 1 reload for a burst, got %d", n)
	}
}

func TestWatcherSkipsMissingDirs(t *testing.T) {
	w, err := NewWatcher(&countingReloader{}, "", filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Errorf("unexpected error from Run: %v", err)
	}
}
