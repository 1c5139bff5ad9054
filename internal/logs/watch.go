package logs

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pollInterval bounds how long Follow waits when no filesystem event arrives,
// covering filesystems where fsnotify is unreliable.
const pollInterval = 2 * time.Second

// watchFile signals on writes to path or its replacement after rotation. The
// directory is watched so a rotated file is picked up under the same name.
func watchFile(path string) (<-chan struct{}, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create log watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, nil, fmt.Errorf("watch log directory: %w", err)
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	notify := func() {
		select {
		case out <- struct{}{}:
		default:
		}
	}
	go func() {
		defer close(out)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) == filepath.Clean(path) &&
					event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					notify()
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-ticker.C:
				notify()
			}
		}
	}()
	return out, func() {
		close(done)
		_ = w.Close()
	}, nil
}
