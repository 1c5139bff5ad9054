package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"stereomax/internal/logging"
	"stereomax/internal/runlock"
)

// Handler processes one settled input.
type Handler func(ctx context.Context, inputPath, outputPath string) error

// Options configures a Watcher.
type Options struct {
	Dir        string
	OutputDir  string
	Extensions []string
	Settle     time.Duration
	// Poll is how often pending files are re-checked; defaults to Settle/4.
	Poll time.Duration
}

// Watcher feeds settled files from a directory to a Handler.
type Watcher struct {
	opts    Options
	handler Handler
	logger  *slog.Logger
	now     func() time.Time
}

// New validates options and constructs a watcher.
func New(opts Options, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve directory: %w", err)
	}
	out, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve output directory: %w", err)
	}
	if opts.OutputDir == "" {
		return nil, errors.New("watch: output directory is required")
	}
	if dir == out {
		return nil, errors.New("watch: output directory must differ from the watched directory")
	}
	if len(opts.Extensions) == 0 {
		return nil, errors.New("watch: at least one extension is required")
	}
	if opts.Settle <= 0 {
		opts.Settle = 10 * time.Second
	}
	if opts.Poll <= 0 {
		opts.Poll = max(opts.Settle/4, 25*time.Millisecond)
	}
	opts.Dir, opts.OutputDir = dir, out
	return &Watcher{
		opts:    opts,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "watch"),
		now:     time.Now,
	}, nil
}

// Run watches until ctx is cancelled. Handler errors are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("watch: create output directory: %w", err)
	}
	lock, err := runlock.Acquire(runlock.WatchLockPath(w.opts.Dir))
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.Dir, err)
	}
	defer func() { _ = lock.Release() }()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.opts.Dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", w.opts.Dir, err)
	}

	pending := pendingSet{}
	w.scanExisting(pending)
	w.logger.Info("watching directory",
		logging.String(logging.FieldEventType, "watch_start"),
		logging.String("dir", w.opts.Dir),
		logging.String("output_dir", w.opts.OutputDir),
		logging.Duration("settle", w.opts.Settle),
	)

	ticker := time.NewTicker(w.opts.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stop"))
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !Eligible(event.Name, w.opts.Extensions) {
				continue
			}
			w.track(pending, event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "watcher error", "watch_error", logging.Error(err))
		case <-ticker.C:
			for path := range pending {
				w.track(pending, path)
			}
			for _, path := range pending.ready(w.now(), w.opts.Settle) {
				if ctx.Err() != nil {
					return nil
				}
				w.process(ctx, path)
			}
		}
	}
}

func (w *Watcher) scanExisting(pending pendingSet) {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		logging.WarnWithContext(w.logger, "failed to scan watched directory", "watch_scan_failed", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.opts.Dir, entry.Name())
		if Eligible(path, w.opts.Extensions) {
			w.track(pending, path)
		}
	}
}

// track refreshes a pending file's size; vanished files are dropped.
func (w *Watcher) track(pending pendingSet, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		delete(pending, path)
		return
	}
	pending.touch(path, info.Size(), w.now())
}

func (w *Watcher) process(ctx context.Context, inputPath string) {
	outputPath := OutputPathFor(inputPath, w.opts.OutputDir)
	if _, err := os.Stat(outputPath); err == nil {
		w.logger.Info("output already exists; skipping",
			logging.String(logging.FieldEventType, "watch_skip"),
			logging.String("input", inputPath),
			logging.String("output", outputPath),
		)
		return
	}
	w.logger.Info("processing settled file",
		logging.String(logging.FieldEventType, "watch_process"),
		logging.String("input", inputPath),
		logging.String("output", outputPath),
	)
	if err := w.handler(ctx, inputPath, outputPath); err != nil {
		logging.ErrorWithContext(w.logger, "watched file failed", "watch_process_failed",
			logging.String("input", inputPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "see the run log above for the failing stage"),
		)
	}
}
