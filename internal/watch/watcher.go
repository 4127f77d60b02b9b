// Package watch re-runs a callback whenever a single file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"kozelmixer/internal/logging"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches the directory holding path and fires OnChange once the
// file has been quiet for the debounce window. The parent directory is
// watched rather than the file so atomic rename-on-save is seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context) error
	ready    chan struct{}
}

// New creates a watcher for path. A non-positive debounce uses DefaultDebounce.
func New(path string, debounce time.Duration, onChange func(ctx context.Context) error) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the underlying watch is registered.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run blocks until ctx is done or OnChange returns an error. Callback runs
// are sequential; changes arriving during a run queue at most one more run.
func (w *Watcher) Run(ctx context.Context) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", w.path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(target)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logging.Watch("watching %s", target)
	close(w.ready)

	triggers := make(chan struct{}, 1)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var timer *time.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-gctx.Done():
				return nil

			case event, ok := <-fw.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != target || !relevant(event.Op) {
					continue
				}
				logging.Get(logging.CategoryWatch).Debug("%s event for %s", event.Op, event.Name)
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(w.debounce)
				}
				fire = timer.C

			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				logging.WatchError("watcher error: %v", err)

			case <-fire:
				fire = nil
				select {
				case triggers <- struct{}{}:
				default:
				}
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-triggers:
				if err := w.onChange(gctx); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}

func relevant(op fsnotify.Op) bool {
	return op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
