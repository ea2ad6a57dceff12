package organizer

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/devclean/pkg/devclean/classify"
	"github.com/jamesainslie/devclean/pkg/devclean/logging"
)

// DefaultDebounce is the quiet period Watch waits for before organizing.
const DefaultDebounce = 2 * time.Second

// Watch organizes dir once, then again each time new files settle in it,
// until ctx is cancelled. fn receives the result of every run. Bucket
// folders appearing in dir do not trigger a run.
func (o *Organizer) Watch(ctx context.Context, dir string, debounce time.Duration, fn func(Summary, error)) error {
	log := logging.Get("organizer")
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if _, err := Preview(dir); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	run := func() {
		s, err := o.Organize(dir)
		if fn != nil {
			fn(s, err)
		}
	}
	run()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if filepath.Dir(event.Name) != filepath.Clean(dir) || isBucket(filepath.Base(event.Name)) {
				continue
			}
			log.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)

		case <-timer.C:
			run()
		}
	}
}

func isBucket(name string) bool {
	if name == classify.Others {
		return true
	}
	return slices.ContainsFunc(classify.Buckets, func(b classify.Bucket) bool {
		return b.Name == name
	})
}
