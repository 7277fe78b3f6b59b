package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robinvdvleuten/xbrl/logging"
)

// Editors often write a file in several steps.
const debounceDelay = 100 * time.Millisecond

// watchFile calls onChange after filename settles following a change. It
// blocks until ctx is done.
func watchFile(ctx context.Context, filename string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filename, err)
	}

	log := logging.FromContext(ctx)

	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(debounceDelay)
			fire = debounce.C

		case <-fire:
			fire = nil
			// Atomic saves replace the file, which drops the watch.
			if err := watcher.Add(filename); err != nil {
				log.Warn().Str("file", filename).Err(err).Msg("failed to re-watch file")
			}
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("file watcher error")
		}
	}
}
