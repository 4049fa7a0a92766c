// Package watch reports changes to the FAQ seed file.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// FileWatcher signals when one file is written, created or renamed into place.
// Bursts of events inside the debounce window collapse into one signal.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
}

// NewFileWatcher watches the file's directory so editors that replace the
// file on save are still seen.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path failed: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher failed: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s failed: %w", filepath.Dir(abs), err)
	}

	return &FileWatcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
	}, nil
}

// Changes emits once per settled change until ctx is done.
func (w *FileWatcher) Changes(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)

		var (
			timer   *time.Timer
			timerCh <-chan time.Time
		)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				timerCh = timer.C
			case <-timerCh:
				timerCh = nil
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("seed watcher error: %v", err)
			}
		}
	}()

	return out
}

func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}
