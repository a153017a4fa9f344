package filter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the allow-list file into a Provider whenever it changes.
// A file that fails to parse is logged and the previous allow-list stays in effect.
type Watcher struct {
	path     string
	provider *Provider
	logger   *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for path. The parent directory is watched so that
// editors replacing the file by rename are picked up.
func NewWatcher(path string, provider *Provider, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch allow-list directory: %w", err)
	}
	return &Watcher{
		path:     filepath.Clean(path),
		provider: provider,
		logger:   logger,
		debounce: 200 * time.Millisecond,
		watcher:  fw,
	}, nil
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Editors emit bursts of events; reload once the burst settles.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Allow-list watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	next, err := LoadAllowlist(w.path)
	if err != nil {
		w.logger.Warn("Allow-list reload failed, keeping previous version", zap.Error(err))
		return
	}
	prev := w.provider.Current()
	w.provider.Set(next)
	prevVersion := ""
	if prev != nil {
		prevVersion = prev.Version
	}
	w.logger.Info("Allow-list reloaded",
		zap.String("previous_version", prevVersion),
		zap.String("version", next.Version),
		zap.Int("sets", next.Len()),
	)
}
