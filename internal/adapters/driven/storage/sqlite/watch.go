package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/finvoice/internal/logger"
)

// watchDebounce coalesces the burst of file events a single commit produces.
const watchDebounce = 150 * time.Millisecond

// Watch notifies subscribers when another process writes to the database.
// It returns once the watcher is running and stops when ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(s.path), err)
	}

	go s.watchLoop(ctx, watcher)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !s.isDatabaseEvent(event) {
				continue
			}
			if debounce == nil {
				debounce = time.AfterFunc(watchDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				debounce.Reset(watchDebounce)
			}
		case <-fire:
			logger.Debug("Invoice database changed on disk")
			s.hub.Notify(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("invoice database watcher: %v", err)
		}
	}
}

// isDatabaseEvent reports whether event is a write to the database or its WAL.
func (s *Store) isDatabaseEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Base(event.Name)
	base := filepath.Base(s.path)
	return name == base || strings.HasPrefix(name, base+"-wal")
}
