package rules

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher calls onChange after the rule file has been written, created or
// renamed into place. Bursts of events within the debounce window collapse
// into one call.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context)
	logger   *logrus.Logger
	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	done     chan struct{}
}

func NewWatcher(
	path string,
	debounce time.Duration,
	logger *logrus.Logger,
	onChange func(ctx context.Context),
) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		watcher:  fsWatcher,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the parent directory, since editors and config management
// tools usually replace the file instead of writing it in place.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.WithField("path", w.path).Info("watching safety rule file for changes")
	go w.loop(ctx)
	return nil
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("rule file watcher error")
		case <-pending:
			pending = nil
			w.logger.WithField("path", w.path).Info("safety rule file changed")
			w.onChange(ctx)
		}
	}
}
