package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

// Watch emits once file activity in the project has been quiet for the
// debounce period. Bursts of events produce a single notification.
// The channel is closed when ctx is cancelled.
func (s *Source) Watch(ctx context.Context, projectID string) (<-chan struct{}, error) {
	dir, err := ResolveProjectDir(s.root, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	go s.watchLoop(ctx, watcher, changes)
	return changes, nil
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- struct{}) {
	defer close(changes)
	defer watcher.Close()

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("Watch: %s %s", event.Op, event.Name)
			timer.Reset(s.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)

		case <-timer.C:
			// Coalesce with a notification the reader has not consumed yet.
			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}
}

// relevant filters out hidden files and permission-only changes.
func relevant(event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
