package cliconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/sunshade/pkg/log"
)

// Watcher flags changes to the config file. The flag is read between
// cycles, so a running cycle never sees new values.
type Watcher struct {
	path    string
	logger  log.Logger
	watcher *fsnotify.Watcher
	dirty   atomic.Bool
}

// NewWatcher watches the directory holding path. Editors commonly replace
// files by rename, so the directory rather than the file is watched.
func NewWatcher(path string, logger log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config watcher: watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{path: filepath.Clean(path), logger: logger, watcher: fw}, nil
}

// Run consumes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.dirty.Swap(true) {
				w.logger.Info("config file changed, reloading before next cycle",
					log.String("path", w.path),
				)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", log.Err(err))
		}
	}
}

// Changed reports whether the file changed since the previous call.
func (w *Watcher) Changed() bool {
	return w.dirty.Swap(false)
}
