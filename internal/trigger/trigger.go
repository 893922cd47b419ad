// Package trigger watches a filesystem path for create/write events and
// invokes a callback, giving an operator a way to fire the sample
// injection path (see switchcore.Switch.InjectSample) without a signal
// or a network call.
package trigger

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch blocks until ctx is canceled, calling onTrigger once for every
// Create or Write event observed on path. The path need not exist yet;
// the containing directory is watched and matched by name so an
// operator can `touch` the file into existence repeatedly.
func Watch(ctx context.Context, path string, log logrus.FieldLogger, onTrigger func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("trigger: creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("trigger: watching %s: %w", dir, err)
	}

	log.WithField("path", path).Info("trigger watcher started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			log.WithField("path", path).Info("trigger fired")
			onTrigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("trigger watcher error")
		}
	}
}
