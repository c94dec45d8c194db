// Package watch reloads a YAML file when it changes on disk. The run
// command uses it for live control tuning.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 150 * time.Millisecond

// Watcher calls a function with the contents of one file each time it
// settles after a change.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	logger   *zap.Logger
	onChange func(data []byte)

	Debounce time.Duration
}

// New watches path. The file's directory is watched rather than the file,
// so editors that save by renaming a temporary file are still seen.
func New(path string, logger *zap.Logger, onChange func(data []byte)) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("watch: nil callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     abs,
		fs:       fw,
		logger:   logger.With(zap.String("file", abs)),
		onChange: onChange,
		Debounce: DefaultDebounce,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run delivers changes until ctx is done, then closes the watcher. The
// callback runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("file event", zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("reload failed", zap.Error(err))
		return
	}
	w.logger.Info("file reloaded", zap.Int("bytes", len(data)))
	w.onChange(data)
}
