// ABOUTME: Development watcher that re-parses templates when files in the asset directories change.
// ABOUTME: Bursts of fsnotify events are coalesced so one editor save triggers one reload.
package site

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay is how long the watcher waits for further events before reloading.
const reloadDelay = 100 * time.Millisecond

// Reloader is anything that can re-read its inputs from disk.
type Reloader interface {
	Load() error
}

// Watcher triggers a Reloader whenever a watched directory changes.
type Watcher struct {
	target Reloader
	fsw    *fsnotify.Watcher

	// OnReload, if set, is called after every reload attempt.
	OnReload func(err error)
}

// NewWatcher watches each existing directory in dirs. Directories that do
// not exist are skipped.
func NewWatcher(target Reloader, dirs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	for _, dir := range dirs {
		if dir == "" || !dirExists(dir) {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return &Watcher{target: target, fsw: fsw}, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)

		case <-fire:
			fire = nil
			err := w.target.Load()
			if err != nil {
				log.Printf("reload failed, keeping previous templates: %v", err)
			} else {
				log.Printf("templates reloaded")
			}
			if w.OnReload != nil {
				w.OnReload(err)
			}
		}
	}
}
